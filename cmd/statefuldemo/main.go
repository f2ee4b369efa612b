// statefuldemo: stateless vs stateful recurrent layer walkthrough
//
// Feeds one long batch of two sequences through a gated recurrent layer,
// then re-feeds the same batch as contiguous segments and shows that the
// stateful layer ends in the same hidden state.
//
// Usage:
//
//	statefuldemo --hidden=5 --segments="3 3 3" --seed=42
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gru_lib/nn"
	"gru_lib/nn/layers"
	"gru_lib/tensor"
	"gru_lib/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

var (
	hiddenWidth = flag.Int("hidden", 5, "Hidden state width")
	segmentsStr = flag.String("segments", "3 3 3", "Segment lengths for the split pass (must sum to 9)")
	seed        = flag.Uint64("seed", 42, "Random seed for weight initialization")
	verbose     = flag.Bool("verbose", true, "Verbose output")
	weightsIn   = flag.String("weights", "", "Load gate weights from JSON file")
	weightsOut  = flag.String("output", "", "Save gate weights to JSON file")
	tolerance   = flag.Float64("tol", 1e-6, "Max allowed state divergence between whole and segmented passes")
)

const layerTag = "stateful_rnn"

// sequenceData is the two-sequence scalar dataset: every batch slot is one
// logical sequence, so slot 0 is always the small ramp and slot 1 the large.
func sequenceData() *tensor.Tensor {
	batch, err := tensor.NewBatch(2, 9, 1, []float64{
		-4, -3, -2, -1, 0, 1, 2, 3, 4,
		-40, -30, -20, -10, 0, 10, 20, 30, 40,
	})
	if err != nil {
		panic(err)
	}
	return batch
}

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	rand.Seed(*seed)

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║           Stateful Recurrent Layer Walkthrough               ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	cfg := &utils.Config{
		BatchSize:   2,
		InputWidth:  1,
		HiddenWidth: *hiddenWidth,
		Stateful:    true,
		Seed:        int64(*seed),
		WeightsFile: *weightsIn,
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	segments, err := utils.ParseDims(*segmentsStr)
	if err != nil {
		log.Fatalf("invalid -segments value %q: %v", *segmentsStr, err)
	}
	total := 0
	for _, s := range segments {
		if s <= 0 {
			log.Fatalf("segment lengths must be positive, got %v", segments)
		}
		total += s
	}
	if total != 9 {
		log.Fatalf("segments %v sum to %d, want 9", segments, total)
	}

	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Batch size:   %d\n", cfg.BatchSize)
	fmt.Printf("  Input width:  %d\n", cfg.InputWidth)
	fmt.Printf("  Hidden width: %d\n", cfg.HiddenWidth)
	fmt.Printf("  Segments:     %v\n", segments)
	fmt.Printf("  Seed:         %d\n", *seed)
	fmt.Println()

	stats := &utils.TimingStats{Steps: 9}
	start := time.Now()

	// One weight set shared by both layers, so their outputs are comparable.
	initStart := time.Now()
	var gates *layers.GateWeights
	if *weightsIn != "" {
		mw, err := utils.LoadWeights(*weightsIn)
		if err != nil {
			log.Fatalf("loading weights: %v", err)
		}
		ts, err := utils.ModelToTensors(mw, layerTag)
		if err != nil {
			log.Fatalf("unpacking weights: %v", err)
		}
		gates, err = layers.GateWeightsFromTensors(ts)
		if err != nil {
			log.Fatalf("rebuilding gate weights: %v", err)
		}
		log.Infof("loaded gate weights from %s", *weightsIn)
	} else {
		gates = layers.NewGateWeights(cfg.InputWidth, cfg.HiddenWidth)
	}

	plainGRU, err := layers.NewGRU(cfg.BatchSize, cfg.InputWidth, cfg.HiddenWidth, false, gates)
	if err != nil {
		log.Fatalf("building stateless layer: %v", err)
	}
	plainGRU.SetTag("rnn")
	statefulGRU, err := layers.NewGRU(cfg.BatchSize, cfg.InputWidth, cfg.HiddenWidth, true, gates)
	if err != nil {
		log.Fatalf("building stateful layer: %v", err)
	}
	statefulGRU.SetTag(layerTag)

	model := &nn.Sequential{Layers: []nn.Module{plainGRU}}
	statefulModel := &nn.Sequential{Layers: []nn.Module{statefulGRU}}
	stats.ModelInitTime = time.Since(initStart)

	data := sequenceData()

	// Pass the batch through both models.
	if _, err := model.Forward(data); err != nil {
		log.Fatalf("stateless forward: %v", err)
	}
	fullStart := time.Now()
	if _, err := statefulModel.Forward(data); err != nil {
		log.Fatalf("stateful forward: %v", err)
	}
	stats.FullPassTime = time.Since(fullStart)

	fmt.Println("After one pass over the full 9-step batch:")
	fmt.Println("  Stateless layer: state is discarded between calls; the next")
	fmt.Println("  call starts again from zero vectors.")
	printStates("  Stateful layer state", statefulGRU.States())

	retained := statefulGRU.States().Clone()

	// Reset and show the zero state.
	resetStart := time.Now()
	if err := statefulModel.ResetStates(); err != nil {
		log.Fatalf("reset: %v", err)
	}
	stats.ResetTime = time.Since(resetStart)
	fmt.Println("\nAfter reset:")
	printStates("  Stateful layer state", statefulModel.Layer(layerTag).(*layers.GRU).States())

	// Feed the same sequences as contiguous segments with no reset between.
	segStart := time.Now()
	offset := 0
	for i, n := range segments {
		sub := tensor.New(2, n, 1)
		for slot := 0; slot < 2; slot++ {
			for j := 0; j < n; j++ {
				sub.Set(data.At(slot, offset+j, 0), slot, j, 0)
			}
		}
		if _, err := statefulModel.Forward(sub); err != nil {
			log.Fatalf("segment %d forward: %v", i+1, err)
		}
		offset += n
	}
	stats.SegmentedPassTime = time.Since(segStart)

	segmented := statefulGRU.States()
	fmt.Println("\nAfter feeding the same sequences as segments of", segments, "steps:")
	printStates("  Stateful layer state", segmented)

	diff, err := tensor.MaxAbsDiff(retained, segmented)
	if err != nil {
		log.Fatalf("comparing states: %v", err)
	}
	fmt.Printf("\nMax |whole − segmented| = %.3g\n", diff)
	if diff > *tolerance {
		log.Fatalf("segmented pass diverged from whole pass: %.3g > %.3g", diff, *tolerance)
	}
	log.Infof("segmented pass matches whole pass within %.0e", *tolerance)

	if *weightsOut != "" {
		mw := utils.TensorsToModel(layerTag, gates.Tensors())
		if err := utils.SaveWeights(*weightsOut, mw); err != nil {
			log.Errorf("saving weights: %v", err)
			os.Exit(1)
		}
		log.Infof("saved gate weights to %s", *weightsOut)
	}

	stats.TotalTime = time.Since(start)
	utils.PrintTimingStats(stats)
}

func printStates(label string, states *tensor.Tensor) {
	slots, width := states.Shape[0], states.Shape[1]
	for slot := 0; slot < slots; slot++ {
		fmt.Printf("%s[slot %d]: [", label, slot)
		for i := 0; i < width; i++ {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%+.6f", states.At(slot, i))
		}
		fmt.Println("]")
	}
}
