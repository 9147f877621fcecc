package notify

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/types"
)

type fakeSink struct {
	played []types.Sound
}

func (f *fakeSink) Play(s types.Sound, _ int) error {
	f.played = append(f.played, s)
	return nil
}

func TestThresholdEditIsDebouncedUntilTimeoutAndActivity(t *testing.T) {
	e := NewEngine(nil)
	e.SetThresholdEnabled(true)
	e.SetDataThreshold(DataThreshold{
		Enabled: true, Representation: types.DataReprBytes,
		Threshold: 1000, ByteMultiple: types.ByteMultipleB, Sound: types.SoundNone,
	})

	base := time.Now()
	e.EditThreshold(50, types.ByteMultipleB, base)

	// No packets observed yet: edit must not apply even after the timeout.
	notifications := e.Evaluate(base.Add(TimeoutThresholdAdjust+time.Second), Epoch{}, nil, nil, nil)
	assert.Empty(t, notifications)
	assert.Equal(t, uint64(1000), e.dataThreshold.Threshold)

	// A packet arrives but the timeout hasn't elapsed: still pending.
	notifications = e.Evaluate(base.Add(time.Millisecond), Epoch{IncomingPackets: 1, IncomingBytes: 1}, nil, nil, nil)
	assert.Empty(t, notifications)
	assert.Equal(t, uint64(1000), e.dataThreshold.Threshold)

	// Timeout elapses with activity already observed: the edit applies,
	// and the new (lower) threshold fires immediately against the same epoch.
	notifications = e.Evaluate(base.Add(TimeoutThresholdAdjust+time.Second), Epoch{IncomingPackets: 1, IncomingBytes: 60}, nil, nil, nil)
	assert.Equal(t, uint64(50), e.dataThreshold.Threshold)
	require.Len(t, notifications, 1)
	assert.Equal(t, types.NotificationData, notifications[0].Kind)
}

func TestDataThresholdFiresWhenAmountMeetsThreshold(t *testing.T) {
	e := NewEngine(nil)
	e.SetDataThreshold(DataThreshold{
		Enabled: true, Representation: types.DataReprBytes,
		Threshold: 100, ByteMultiple: types.ByteMultipleB, Sound: types.SoundPop,
	})

	sink := &fakeSink{}
	e.sink = sink

	notifications := e.Evaluate(time.Now(), Epoch{IncomingBytes: 80, OutgoingBytes: 30}, nil, nil, nil)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, types.NotificationData, n.Kind)
	require.NotNil(t, n.Data)
	assert.Equal(t, uint64(80), n.Data.Incoming)
	assert.Equal(t, uint64(30), n.Data.Outgoing)
	assert.Equal(t, []types.Sound{types.SoundPop}, sink.played)
}

func TestFavoriteNotificationFiresOnlyForWatchedHostsWithTraffic(t *testing.T) {
	e := NewEngine(nil)
	watched := hosttable.Host{Domain: "example.com", ASN: hosttable.ASN{Number: 42}}
	other := hosttable.Host{Domain: "other.com", ASN: hosttable.ASN{Number: 7}}
	e.SetFavoriteNotification(true, types.SoundDing)
	e.SetFavoriteHosts([]hosttable.Key{watched.Key()})

	notifications := e.Evaluate(time.Now(), Epoch{}, []HostTraffic{
		{Host: watched, Packets: 1, Bytes: 100},
		{Host: other, Packets: 5, Bytes: 500},
	}, nil, nil)

	require.Len(t, notifications, 1)
	assert.Equal(t, types.NotificationFavorite, notifications[0].Kind)
	assert.Equal(t, watched, notifications[0].Favorite.Host)
}

func TestBlacklistNotificationFiresForMatchingPeers(t *testing.T) {
	e := NewEngine(nil)
	e.SetBlacklistNotification(true, types.SoundSwhoosh)
	bad := netip.MustParseAddr("203.0.113.9")
	good := netip.MustParseAddr("203.0.113.10")

	notifications := e.Evaluate(time.Now(), Epoch{}, nil, []netip.Addr{good, bad}, func(a netip.Addr) bool {
		return a == bad
	})

	require.Len(t, notifications, 1)
	assert.Equal(t, types.NotificationBlacklist, notifications[0].Kind)
	assert.Equal(t, bad, notifications[0].Blacklist.Address)
}

func TestLogEvictsOldestPastCapacity(t *testing.T) {
	e := NewEngine(nil)
	e.SetDataThreshold(DataThreshold{
		Enabled: true, Representation: types.DataReprPackets,
		Threshold: 1, ByteMultiple: types.ByteMultipleB, Sound: types.SoundNone,
	})

	for i := 0; i < logCapacity+5; i++ {
		e.Evaluate(time.Now(), Epoch{IncomingPackets: 1}, nil, nil, nil)
	}

	log := e.Log()
	require.Len(t, log, logCapacity)
	assert.Equal(t, int64(6), log[0].ID) // the first 5 were evicted
	assert.Equal(t, int64(logCapacity+5), log[len(log)-1].ID)
}

func TestUnreadCounterAccumulatesAndMarkAllReadZeroesIt(t *testing.T) {
	e := NewEngine(nil)
	e.SetDataThreshold(DataThreshold{
		Enabled: true, Representation: types.DataReprPackets,
		Threshold: 1, ByteMultiple: types.ByteMultipleB, Sound: types.SoundNone,
	})

	e.Evaluate(time.Now(), Epoch{IncomingPackets: 1}, nil, nil, nil)
	e.Evaluate(time.Now(), Epoch{IncomingPackets: 1}, nil, nil, nil)
	assert.Equal(t, 2, e.Unread())

	e.MarkAllRead()
	assert.Equal(t, 0, e.Unread())
}

func TestResetClearsLogAndIDSequenceButKeepsConfiguration(t *testing.T) {
	e := NewEngine(nil)
	e.SetDataThreshold(DataThreshold{
		Enabled: true, Representation: types.DataReprPackets,
		Threshold: 1, ByteMultiple: types.ByteMultipleB, Sound: types.SoundNone,
	})
	e.Evaluate(time.Now(), Epoch{IncomingPackets: 1}, nil, nil, nil)

	e.Reset()
	assert.Empty(t, e.Log())
	assert.Equal(t, 0, e.Unread())

	notifications := e.Evaluate(time.Now(), Epoch{IncomingPackets: 1}, nil, nil, nil)
	require.Len(t, notifications, 1)
	assert.Equal(t, int64(1), notifications[0].ID) // id sequence restarted
}
