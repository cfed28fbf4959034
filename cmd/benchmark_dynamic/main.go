package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	computeds "github.com/johnsoncodehk/computeds"
	"github.com/olekukonko/tablewriter"
)

func main() {
	log.Print("Starting dynamic graph benchmark, please wait...")
	defer log.Print("Finished dynamic graph benchmark")

	perfTestCfgs := []benchmarkTestConfig{
		{
			name:           "simple component",
			width:          10,
			staticFraction: 1,
			nSources:       2,
			totalLayers:    5,
			readFraction:   0.2,
			iterations:     600000,
		},
		{
			name:           "dynamic component",
			width:          10,
			totalLayers:    10,
			staticFraction: 0.75,
			nSources:       6,
			readFraction:   0.2,
			iterations:     15000,
		},
		{
			name:           "large web app",
			width:          1000,
			totalLayers:    12,
			staticFraction: 0.95,
			nSources:       4,
			readFraction:   1,
			iterations:     7000,
		},
		{
			name:           "wide dense",
			width:          1000,
			totalLayers:    5,
			staticFraction: 1,
			nSources:       25,
			readFraction:   1,
			iterations:     3000,
		},
		{
			name:           "deep",
			width:          5,
			totalLayers:    500,
			staticFraction: 1,
			nSources:       3,
			readFraction:   1,
			iterations:     500,
		},
		{
			name:           "very dynamic",
			width:          100,
			totalLayers:    15,
			staticFraction: 0.5,
			nSources:       6,
			readFraction:   1,
			iterations:     2000,
		},
	}

	type results struct {
		sum      int
		count    int64
		distinct int
		checksum uint64
		duration time.Duration
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"framework", "size", "nSources", "read%", "static%",
		"nTimes", "test", "time",
		"updateRate", "distinct", "checksum", "title",
	})

	testRepeats := 5
	for _, cfg := range perfTestCfgs {
		log.Printf("Running '%s' config", cfg.name)
		counter := new(int64)
		recomputed := mapset.NewThreadUnsafeSet[int]()
		graph := benchmarkMakeGraph(&benchmarkMakeGraphConfig{
			counter:        counter,
			recomputed:     recomputed,
			width:          cfg.width,
			totalLayers:    cfg.totalLayers,
			nSources:       cfg.nSources,
			staticFraction: cfg.staticFraction,
		})

		runOnce := func() (int, uint64) {
			return benchmarkRunGraph(&benchmarkRunGraphConfig{
				graph:        graph,
				iteration:    cfg.iterations,
				readFraction: cfg.readFraction,
			})
		}
		// run once to warm up
		runOnce()

		bestResult := &results{
			duration: time.Hour,
		}

		for i := 0; i < testRepeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.name, i+1, testRepeats, (i+1)*100/testRepeats)
			*counter = 0
			recomputed.Clear()
			start := time.Now()
			sum, checksum := runOnce()
			duration := time.Since(start)

			if duration < bestResult.duration {
				bestResult.duration = duration
				bestResult.sum = sum
				bestResult.count = *counter
				bestResult.distinct = recomputed.Cardinality()
				bestResult.checksum = checksum
			}
		}

		makeTitle := func() string {
			sb := strings.Builder{}
			sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.width, cfg.totalLayers, cfg.nSources))
			if cfg.staticFraction < 1 {
				sb.WriteString(" dynamic")
			}
			if cfg.readFraction < 1 {
				sb.WriteString(fmt.Sprintf(" read %0.2f%%", 100*cfg.readFraction))
			}
			return sb.String()
		}

		updateRate := float64(bestResult.count) / (float64(bestResult.duration) / float64(time.Millisecond))

		table.Append([]string{
			"computeds", // framework
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers), // size
			fmt.Sprint(cfg.nSources),                         // nSources
			fmt.Sprint(cfg.readFraction),                     // read%
			fmt.Sprint(cfg.staticFraction),                   // static%
			humanize.Comma(cfg.iterations),                   // nTimes
			cfg.name,                                         // test
			fmt.Sprint(bestResult.duration),                  // time
			humanize.Comma(int64(updateRate)),                // updateRate
			humanize.Comma(int64(bestResult.distinct)),       // distinct
			fmt.Sprintf("%016x", bestResult.checksum),        // checksum
			makeTitle(),                                      // title
		})
	}
	table.Render()
}

type benchmarkTestConfig struct {
	name           string  // friendly name for the test, should be unique
	width          int64   // width of dependency graph to construct
	totalLayers    int64   // depth of dependency graph to construct
	staticFraction float64 // fraction of nodes with a fixed source set
	nSources       int64   // number of sources feeding each node
	readFraction   float64 // fraction of last-layer elements read each iteration
	iterations     int64   // number of test iterations
}

type cell interface {
	Value() int
}

type benchmarkGraph struct {
	rs      *computeds.ReactiveSystem
	sources []*computeds.WriteableSignal[int]
	layers  [][]cell
}

type benchmarkMakeGraphConfig struct {
	counter                      *int64
	recomputed                   mapset.Set[int]
	width, totalLayers, nSources int64
	staticFraction               float64
}

func benchmarkMakeGraph(cfg *benchmarkMakeGraphConfig) *benchmarkGraph {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		log.Panic(err)
	})
	sources := make([]*computeds.WriteableSignal[int], cfg.width)
	prevRow := make([]cell, cfg.width)
	for i := range sources {
		sources[i] = computeds.Signal(rs, i)
		prevRow[i] = sources[i]
	}
	graph := &benchmarkGraph{rs: rs, sources: sources}

	random := rand.New(rand.NewSource(0))
	nextID := 0
	numRows := cfg.totalLayers - 1
	graph.layers = make([][]cell, numRows)
	for l := int64(0); l < numRows; l++ {
		row := makeBenchmarkRow(&benchmarkRowConfig{
			rs:             rs,
			sources:        prevRow,
			counter:        cfg.counter,
			recomputed:     cfg.recomputed,
			staticFraction: cfg.staticFraction,
			nSources:       cfg.nSources,
			rand:           random,
			nextID:         &nextID,
		})
		graph.layers[l] = row
		prevRow = row
	}

	return graph
}

type benchmarkRunGraphConfig struct {
	graph        *benchmarkGraph
	iteration    int64
	readFraction float64
}

// Execute the graph by writing one of the sources and reading some or
// all of the leaves. Returns the sum of all leaf values and a digest of
// every value read, for cross-run comparison.
func benchmarkRunGraph(cfg *benchmarkRunGraphConfig) (int, uint64) {
	random := rand.New(rand.NewSource(0))
	leaves := cfg.graph.layers[len(cfg.graph.layers)-1]
	skipCount := int(math.Round(float64(len(leaves)) * (1 - cfg.readFraction)))
	readLeaves := benchmarkRemoveElems(leaves, skipCount, random)

	digest := xxhash.New()
	var buf [8]byte
	hashValue := func(v int) {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		buf[4] = byte(v >> 32)
		buf[5] = byte(v >> 40)
		buf[6] = byte(v >> 48)
		buf[7] = byte(v >> 56)
		digest.Write(buf[:])
	}

	for i := 0; i < int(cfg.iteration); i++ {
		// writing signals
		sourceDex := i % len(cfg.graph.sources)
		cfg.graph.sources[sourceDex].SetValue(i + sourceDex)

		// reading nth leaves
		for _, leaf := range readLeaves {
			hashValue(leaf.Value())
		}
	}

	sum := 0
	for _, leaf := range readLeaves {
		sum += leaf.Value()
	}
	return sum, digest.Sum64()
}

func benchmarkRemoveElems[T any](src []T, rmCount int, rand *rand.Rand) []T {
	copyWithRemovals := make([]T, len(src))
	copy(copyWithRemovals, src)
	for i := 0; i < rmCount; i++ {
		rmDex := rand.Intn(len(copyWithRemovals))
		copyWithRemovals[rmDex] = copyWithRemovals[len(copyWithRemovals)-1]
		copyWithRemovals = copyWithRemovals[:len(copyWithRemovals)-1]
	}
	return copyWithRemovals
}

type benchmarkRowConfig struct {
	rs             *computeds.ReactiveSystem
	sources        []cell
	counter        *int64
	recomputed     mapset.Set[int]
	staticFraction float64
	nSources       int64
	rand           *rand.Rand
	nextID         *int
}

func makeBenchmarkRow(cfg *benchmarkRowConfig) []cell {
	row := make([]cell, len(cfg.sources))

	for myDex := range cfg.sources {
		mySources := make([]cell, 0, cfg.nSources)
		for sourceDex := 0; sourceDex < int(cfg.nSources); sourceDex++ {
			x := (myDex + sourceDex) % len(cfg.sources)
			mySources = append(mySources, cfg.sources[x])
		}

		id := *cfg.nextID
		*cfg.nextID++

		staticNode := cfg.rand.Float64() < cfg.staticFraction
		if staticNode {
			// static node, always reads every source
			row[myDex] = computeds.Computed(cfg.rs, func(oldValue int) int {
				*cfg.counter++
				cfg.recomputed.Add(id)
				sum := 0
				for _, source := range mySources {
					sum += source.Value()
				}
				return sum
			})
		} else {
			// dynamic node, drops one source depending on the first value
			first := mySources[0]
			tail := mySources[1:]
			row[myDex] = computeds.Computed(cfg.rs, func(oldValue int) int {
				*cfg.counter++
				cfg.recomputed.Add(id)
				sum := first.Value()
				shouldDrop := sum&0x1 > 0
				dropDex := sum % len(tail)

				for i := 0; i < len(tail); i++ {
					if shouldDrop && i == dropDex {
						continue
					}
					sum += tail[i].Value()
				}
				return sum
			})
		}
	}

	return row
}
