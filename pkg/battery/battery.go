// Package battery reads the device power state from the Linux power_supply
// class in sysfs.
package battery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRoot is where the kernel exposes power supplies.
const DefaultRoot = "/sys/class/power_supply"

// Status is a point-in-time power reading. Present is false on machines
// without a battery, which callers treat as "always plugged in".
type Status struct {
	Present  bool
	Level    float64 // 0..1
	Charging bool
}

// Probe reports the current power state.
type Probe interface {
	Status(ctx context.Context) (Status, error)
}

// SysfsProbe implements Probe over a power_supply directory.
type SysfsProbe struct {
	Root string
}

// NewSysfsProbe returns a probe rooted at DefaultRoot.
func NewSysfsProbe() *SysfsProbe {
	return &SysfsProbe{Root: DefaultRoot}
}

// Status aggregates every supply: the level is the mean capacity of all
// batteries, charging is true when any battery charges or any mains adapter
// is online.
func (p *SysfsProbe) Status(ctx context.Context) (Status, error) {
	root := p.Root
	if root == "" {
		root = DefaultRoot
	}
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to list power supplies: %w", err)
	}

	var st Status
	var sum float64
	var batteries int
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Status{}, err
		}
		dir := filepath.Join(root, e.Name())
		switch readAttr(dir, "type") {
		case "Battery":
			capacity, err := strconv.Atoi(readAttr(dir, "capacity"))
			if err != nil {
				continue
			}
			batteries++
			sum += float64(capacity) / 100
			switch readAttr(dir, "status") {
			case "Charging", "Full":
				st.Charging = true
			}
		case "Mains", "USB":
			if readAttr(dir, "online") == "1" {
				st.Charging = true
			}
		}
	}
	if batteries > 0 {
		st.Present = true
		st.Level = sum / float64(batteries)
	}
	return st, nil
}

func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
