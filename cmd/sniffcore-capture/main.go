/*
 * NETCAP - Traffic Analysis Framework
 * Copyright (c) 2017-2020 Philipp Mieden <dreadl0ck [at] protonmail [dot] ch>
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Command sniffcore-capture is a headless demo of the capture pipeline:
// it wires decode, filter, enrichment, aggregation, chart, and
// notification together and prints one summary line per epoch.
package main

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GyulyVGC/sniffnet-core/internal/aggregate"
	"github.com/GyulyVGC/sniffnet-core/internal/chart"
	"github.com/GyulyVGC/sniffnet-core/internal/config"
	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/enrich"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/internal/logging"
	"github.com/GyulyVGC/sniffnet-core/internal/notify"
	"github.com/GyulyVGC/sniffnet-core/internal/pipeline"
	"github.com/GyulyVGC/sniffnet-core/internal/source"
	"github.com/GyulyVGC/sniffnet-core/types"
)

var mainLog = logging.Named("cmd")

type flags struct {
	iface      string
	pcapFile   string
	configPath string
	nameserver string
	debug      bool
	snapLen    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "sniffcore-capture",
		Short: "Capture, classify, and summarize network traffic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.iface, "iface", "", "network interface to capture live from")
	cmd.Flags().StringVar(&f.pcapFile, "pcap", "", "replay a .pcap file instead of a live interface")
	cmd.Flags().StringVar(&f.configPath, "config", config.DefaultPath(), "path to the configuration record")
	cmd.Flags().StringVar(&f.nameserver, "nameserver", "8.8.8.8:53", "DNS server used for reverse-DNS enrichment")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug-level logging")
	cmd.Flags().IntVar(&f.snapLen, "snaplen", 0, "live capture snapshot length (0 = default)")

	return cmd
}

func run(ctx context.Context, f *flags) error {
	logging.SetDebug(f.debug)

	if f.iface == "" && f.pcapFile == "" {
		return fmt.Errorf("one of --iface or --pcap is required")
	}

	rec, corrupted := config.Load(f.configPath)
	if corrupted {
		mainLog.Warn("configuration file was corrupted, falling back to defaults", zap.String("path", f.configPath))
	}

	bpf, structural := rec.Filters.ToStructural()

	isOffline := f.pcapFile != ""
	var src source.Source
	var ifaceAddrs []netip.Addr
	var err error
	if isOffline {
		src, err = source.OpenOffline(f.pcapFile)
		if err != nil {
			return err
		}
	} else {
		src, err = source.OpenLive(f.iface, f.snapLen, bpf.Expr)
		if err != nil {
			return err
		}
		ifaceAddrs = interfaceAddrs(f.iface)
	}
	defer src.Close()

	geodb, err := enrich.OpenGeoDB(rec.GeoCountryDBPath, rec.GeoASNDBPath)
	if err != nil {
		return err
	}
	defer geodb.Close()

	resolver := enrich.NewResolver(f.nameserver)
	dispatcher := enrich.NewDispatcher(resolver, geodb)
	dispatcher.BeginCapture()

	blacklist := enrich.NewBlacklist()
	if rec.BlacklistPath != "" {
		go func() {
			if err := blacklist.Load(rec.BlacklistPath); err != nil {
				mainLog.Warn("blacklist load failed", zap.Error(err))
			}
		}()
	}

	programs := enrich.NewProgramWorker(enrich.LookupLinuxProcfs)
	defer programs.Close()

	model := aggregate.New()
	traffic := chart.New()
	engine := notify.NewEngine(source.NopAudioSink{})
	applyNotificationSettings(engine, rec.Notifications)

	ticks := make(chan pipeline.TickRun, 8)
	offlineGaps := make(chan pipeline.OfflineGap, 8)
	pendingHosts := make(chan pipeline.PendingHosts, 8)

	var captureID atomic.Int64
	worker := pipeline.NewWorker(src, isOffline, ifaceAddrs, structural, dispatcher, blacklist, captureID.Load(), ticks, offlineGaps, pendingHosts)

	if rec.PCAPExport.Enabled {
		exportPath := filepath.Join(rec.PCAPExport.Directory, rec.PCAPExport.FileName)
		exporter, err := source.NewExporter(exportPath, src.LinkType(), snapLenFor(f.snapLen))
		if err != nil {
			mainLog.Warn("pcap export disabled: open failed", zap.String("path", exportPath), zap.Error(err))
		} else {
			defer exporter.Close()
			worker.SetExporter(exporter)
		}
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	go worker.Run(runCtx, func() bool { return true })

	for {
		select {
		case <-runCtx.Done():
			saveLastSession(f.configPath, rec)
			return nil

		case tick := <-ticks:
			delta := model.Merge(tick.Delta)
			submitProgramLookups(programs, delta.Connections)
			drainProgramResults(programs, model.Connections)

			traffic.Update(chart.Delta{
				OutBytes:   delta.OutgoingBytes,
				InBytes:    delta.IncomingBytes,
				OutPackets: delta.OutgoingPackets,
				InPackets:  delta.IncomingPackets,
			}, !isOffline, tick.NoMorePackets)

			fired := engine.Evaluate(time.Now(), notify.Epoch{
				IncomingBytes:   delta.IncomingBytes,
				OutgoingBytes:   delta.OutgoingBytes,
				IncomingPackets: delta.IncomingPackets,
				OutgoingPackets: delta.OutgoingPackets,
			}, hostTrafficOf(delta.Hosts), delta.BlacklistedPeers, blacklist.Contains)

			for _, n := range fired {
				mainLog.Info("notification fired", zap.String("kind", n.Kind.String()))
			}

			printSummary(model.Totals())

			if tick.NoMorePackets {
				saveLastSession(f.configPath, rec)
				return nil
			}

		case gap := <-offlineGaps:
			mainLog.Debug("offline gap", zap.Int("seconds", gap.GapSeconds))

		case pending := <-pendingHosts:
			mainLog.Debug("addresses entered resolution", zap.Int("count", len(pending.Addresses)))
		}
	}
}

func applyNotificationSettings(engine *notify.Engine, n config.NotificationSettings) {
	engine.SetDataThreshold(notify.DataThreshold{
		Enabled:        n.DataThresholdEnabled,
		Representation: n.DataThresholdRepr,
		Threshold:      n.DataThreshold,
		ByteMultiple:   n.DataThresholdByteMultiple,
		Sound:          n.DataThresholdSound,
	})
	engine.SetFavoriteNotification(n.FavoriteEnabled, n.FavoriteSound)
	engine.SetBlacklistNotification(n.BlacklistEnabled, n.BlacklistSound)
	engine.SetRemoteURL(n.RemoteURL)
}

func hostTrafficOf(hosts map[hosttable.Key]*pipeline.HostDelta) []notify.HostTraffic {
	out := make([]notify.HostTraffic, 0, len(hosts))
	for _, hd := range hosts {
		out = append(out, notify.HostTraffic{Host: hd.Host, Packets: hd.Packets, Bytes: hd.Bytes})
	}
	return out
}

// submitProgramLookups enqueues a lookup for every connection in this
// epoch's delta, keyed on whichever endpoint is local to this host.
// Connections that already have a program attributed are submitted again.
func submitProgramLookups(worker *enrich.ProgramWorker, deltas map[conntable.Key]*pipeline.ConnDelta) {
	for key, cd := range deltas {
		port := key.PortB
		if cd.Direction == types.DirectionOutgoing {
			port = key.PortA
		}
		worker.Submit(enrich.ProgramRequest{Port: port, Transport: key.Transport})
	}
}

// drainProgramResults attributes completed program lookups onto the
// matching connections. Best effort: a result with no matching connection
// (evicted, or from a prior epoch) is simply discarded.
func drainProgramResults(worker *enrich.ProgramWorker, table *conntable.Table) {
	for {
		select {
		case res := <-worker.Results():
			if res.Info == nil {
				continue
			}
			attributeProgram(table, res)
		default:
			return
		}
	}
}

func attributeProgram(table *conntable.Table, res enrich.ProgramResult) {
	for i := 0; ; i++ {
		key, agg, ok := table.GetByIndex(i)
		if !ok {
			return
		}
		if agg.Transport != res.Transport {
			continue
		}
		if key.PortA == res.Port || key.PortB == res.Port {
			agg.Program = res.Info
		}
	}
}

// defaultExportSnapLen mirrors the packet source's own default, used
// when --snaplen wasn't given, so a PCAP export file header's snaplen
// matches what the capture itself actually admits.
const defaultExportSnapLen = 262144

func snapLenFor(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return defaultExportSnapLen
}

func printSummary(totals aggregate.Totals) {
	fmt.Printf("observed=%d bytes=%d filtered=%d in=%d/%d out=%d/%d\n",
		totals.ObservedPackets, totals.ObservedBytes, totals.FilteredPackets,
		totals.IncomingPackets, totals.IncomingBytes,
		totals.OutgoingPackets, totals.OutgoingBytes)
}

func saveLastSession(path string, rec *config.Record) {
	if err := config.Save(path, rec); err != nil {
		mainLog.Warn("save configuration failed", zap.Error(err))
	}
}

// interfaceAddrs resolves the set of addresses bound to iface, for the
// address classifier (C2) to tell outgoing traffic from incoming.
func interfaceAddrs(iface string) []netip.Addr {
	ni, err := net.InterfaceByName(iface)
	if err != nil {
		mainLog.Warn("resolve interface addresses failed", zap.String("iface", iface), zap.Error(err))
		return nil
	}
	addrs, err := ni.Addrs()
	if err != nil {
		mainLog.Warn("list interface addresses failed", zap.String("iface", iface), zap.Error(err))
		return nil
	}

	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip, ok := netip.AddrFromSlice(ipNet.IP); ok {
			out = append(out, ip.Unmap())
		}
	}
	return out
}
