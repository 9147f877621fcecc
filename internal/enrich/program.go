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

package enrich

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/types"
)

// ValidProgramTimeout bounds how long a failed program lookup is cached
// before being retried, so a process that starts listening after the
// connection began can still be attributed retroactively.
const ValidProgramTimeout = 5 * time.Second

// ProgramRequest is one (port, transport) lookup request handed to the
// program worker.
type ProgramRequest struct {
	Port      uint16
	Transport types.TransportKind
}

// ProgramResult pairs a request with its (possibly nil) outcome.
type ProgramResult struct {
	ProgramRequest
	Info *conntable.ProgramInfo
}

// ProgramWorker owns the single channel of lookup requests the spec
// describes and serializes access to the negative-result cache — one
// worker, arbitrarily many producers.
type ProgramWorker struct {
	requests chan ProgramRequest
	results  chan ProgramResult
	negative *gocache.Cache
	lookup   func(ProgramRequest) (*conntable.ProgramInfo, bool)
}

// NewProgramWorker starts a worker goroutine backed by lookupFn (injected
// so platform-specific process lookup can be swapped or stubbed in
// tests). Results are delivered on Results(); callers drain it or it
// blocks the worker.
func NewProgramWorker(lookupFn func(ProgramRequest) (*conntable.ProgramInfo, bool)) *ProgramWorker {
	w := &ProgramWorker{
		requests: make(chan ProgramRequest, 64),
		results:  make(chan ProgramResult, 64),
		negative: gocache.New(ValidProgramTimeout, ValidProgramTimeout/2),
		lookup:   lookupFn,
	}
	go w.run()
	return w
}

func (w *ProgramWorker) run() {
	for req := range w.requests {
		key := negativeCacheKey(req)
		if _, cached := w.negative.Get(key); cached {
			w.results <- ProgramResult{ProgramRequest: req, Info: nil}
			continue
		}

		info, ok := w.lookup(req)
		if !ok {
			w.negative.SetDefault(key, struct{}{})
		}
		w.results <- ProgramResult{ProgramRequest: req, Info: info}
	}
}

func negativeCacheKey(req ProgramRequest) string {
	return fmt.Sprintf("%d/%s", req.Port, req.Transport)
}

// Submit enqueues a lookup request. Non-blocking best-effort: if the
// request queue is full the request is dropped, since program
// attribution is an enhancement, never a correctness requirement.
func (w *ProgramWorker) Submit(req ProgramRequest) {
	select {
	case w.requests <- req:
	default:
	}
}

// Results returns the channel of completed lookups.
func (w *ProgramWorker) Results() <-chan ProgramResult {
	return w.results
}

// Close stops accepting new requests.
func (w *ProgramWorker) Close() {
	close(w.requests)
}

// LookupLinuxProcfs is the default, Linux-only lookupFn: it scans
// /proc/net/{tcp,udp} for a socket matching the local port, then walks
// /proc/*/fd to find the process that owns that socket's inode. Best
// effort: any I/O failure or missing match simply returns ok=false.
func LookupLinuxProcfs(req ProgramRequest) (*conntable.ProgramInfo, bool) {
	procFile := "/proc/net/tcp"
	if req.Transport == types.TransportUDP {
		procFile = "/proc/net/udp"
	}

	inode, ok := findSocketInode(procFile, req.Port)
	if !ok {
		return nil, false
	}

	pid, ok := findPIDForInode(inode)
	if !ok {
		return nil, false
	}

	name, _ := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	return &conntable.ProgramInfo{Name: strings.TrimSpace(string(name)), PID: int32(pid)}, true
}

func findSocketInode(procFile string, port uint16) (string, bool) {
	data, err := os.ReadFile(procFile)
	if err != nil {
		return "", false
	}

	wantHex := fmt.Sprintf("%04X", port)
	for _, line := range strings.Split(string(data), "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		localAddr := fields[1]
		parts := strings.Split(localAddr, ":")
		if len(parts) != 2 || parts[1] != wantHex {
			continue
		}
		return fields[9], true
	}
	return "", false
}

func findPIDForInode(inode string) (int, bool) {
	target := fmt.Sprintf("socket:[%s]", inode)

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, false
	}

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err == nil && link == target {
				return pid, true
			}
		}
	}
	return 0, false
}
