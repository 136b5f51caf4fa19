package proc

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemProcessTable reads the OS process table through gopsutil.
type SystemProcessTable struct{}

func (SystemProcessTable) Snapshot() (map[uint32]LiveProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	table := make(map[uint32]LiveProcess, len(procs))
	for _, p := range procs {
		if p.Pid < 0 {
			continue
		}
		table[uint32(p.Pid)] = systemProcess{p: p}
	}
	return table, nil
}

type systemProcess struct {
	p *process.Process
}

func (s systemProcess) Name() string {
	name, err := s.p.Name()
	if err != nil {
		return ""
	}
	return name
}

func (s systemProcess) Signal(sig Signal) error {
	if sig == SignalTerm {
		return s.p.Terminate()
	}
	return s.p.Kill()
}

// ProcessDetail is what the port detail pane shows about an owning process.
type ProcessDetail struct {
	PID        uint32
	Name       string
	User       string
	Cmdline    string
	StartedAt  time.Time
	MemoryRSS  uint64
	CPUPercent float64
}

// DescribeProcess looks up a single pid. Fields the OS refuses to reveal
// (other users' processes without privileges) are left empty.
func DescribeProcess(pid uint32) (ProcessDetail, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ProcessDetail{}, fmt.Errorf("process %d: %w", pid, err)
	}

	detail := ProcessDetail{PID: pid}
	detail.Name, _ = p.Name()
	detail.User, _ = p.Username()
	detail.Cmdline, _ = p.Cmdline()
	if ms, err := p.CreateTime(); err == nil && ms > 0 {
		detail.StartedAt = time.UnixMilli(ms)
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		detail.MemoryRSS = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		detail.CPUPercent = cpu
	}
	return detail, nil
}
