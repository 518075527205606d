package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/template"
	"time"

	"github.com/ashfall-games/hiveworld/ecs"
)

// Report summarizes one hivestress run: the workload configuration, tick
// timing, process memory delta, and the resulting archetype/scheduler
// storage layout — the numbers that matter for an archetype-based ECS,
// where "how many archetypes did this workload fragment into" and "how
// churny was each system" say more than raw throughput alone.
type Report struct {
	Duration   time.Duration
	Entities   int
	Components int
	Systems    int

	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats

	Archetypes []ecs.ArchetypeStats
	Scheduler  *ecs.SchedulerStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// TotalLiveEntities sums LiveCount across every archetype.
func (r *Report) TotalLiveEntities() int {
	n := 0
	for _, a := range r.Archetypes {
		n += a.LiveCount
	}
	return n
}

// TotalChunks sums ChunkCount across every archetype's hive.
func (r *Report) TotalChunks() int {
	n := 0
	for _, a := range r.Archetypes {
		n += a.ChunkCount
	}
	return n
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Hive Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Component Kinds:** {{.Components}}
- **Systems:** {{.Systems}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}

## Storage Layout
- **Archetype Count:** {{len .Archetypes}}
- **Live Entities:** {{.TotalLiveEntities}}
- **Total Hive Chunks:** {{.TotalChunks}}

| Ordinal | Mask | Live Rows | Chunks |
|---|---|---|---|
{{range .Archetypes}}| {{.Ordinal}} | {{printf "%#x" .Mask}} | {{.LiveCount}} | {{.ChunkCount}} |
{{end}}

## Scheduler Stats
- **Registered Systems:** {{.Scheduler.SystemCount}}
- **Total System Executions:** {{.Scheduler.TotalExecutions}}

| System | Executions | Avg Duration | Structural Mutations |
|---|---|---|---|
{{range .Scheduler.Systems}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.StructuralMutations}} |
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}

// sortArchetypesByOrdinal orders a World.Stats() snapshot for stable report
// output; archetypes are otherwise in creation order, which is already
// ordinal order, but this guards the report against that assumption
// changing in World.
func sortArchetypesByOrdinal(stats []ecs.ArchetypeStats) []ecs.ArchetypeStats {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Ordinal < stats[j].Ordinal })
	return stats
}
