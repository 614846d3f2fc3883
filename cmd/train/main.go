// Command train runs a self-play training loop against the Flood-It
// (env/grid) environment for -epochs epochs, checkpointing to -model_path
// after each one.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/portstow/az"
	"github.com/portstow/az/actor"
	"github.com/portstow/az/dualnet"
	"github.com/portstow/az/env"
	"github.com/portstow/az/env/grid"
	"github.com/portstow/az/mcts"
)

var (
	modelPath  = flag.String("model_path", "checkpoints/az", "model checkpoint directory")
	epochs     = flag.Int("epochs", 10, "number of train epochs")
	trainIters = flag.Int("train_iters", 50, "Adam steps per epoch")
	gridSize   = flag.Int("grid_size", 8, "Flood-It board size")
	gridColors = flag.Int("grid_colors", 6, "Flood-It palette size")
)

func main() {
	flag.Parse()

	features := *gridSize * *gridSize * *gridColors
	cfg := az.Config{
		Name:        "flood-it",
		NNConf:      dualnet.DefaultConfig(features, *gridColors),
		MCTSConf:    mcts.DefaultConfig(),
		Workers:     4,
		BatchSize:   256,
		MaxExamples: 50000,
	}
	cfg.MCTSConf.SearchIterations = 128

	var net *dualnet.Network
	var err error
	if _, loaded, loadErr := az.Load(*modelPath); loadErr == nil {
		net = loaded
		log.Printf("resumed checkpoint from %s", *modelPath)
	} else {
		net, err = dualnet.NewNetwork(cfg.NNConf)
		if err != nil {
			log.Fatalf("new network: %+v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Println("shutting down after current episodes finish")
		cancel()
	}()

	newEnv := func(rng *rand.Rand) env.Env {
		cells := make([]byte, *gridSize**gridSize)
		for i := range cells {
			cells[i] = byte(rng.Intn(*gridColors))
		}
		return grid.New(*gridSize, *gridColors, cells)
	}

	run, err := az.Start(ctx, cfg, net, newEnv)
	if err != nil {
		log.Fatalf("start: %+v", err)
	}

	src := rand.New(rand.NewSource(time.Now().UnixNano()))
epochLoop:
	for epoch := 0; epoch < *epochs; epoch++ {
		select {
		case <-ctx.Done():
			break epochLoop
		default:
		}
		for {
			if err := run.TrainEpoch(*trainIters, src); err == nil {
				break
			}
			log.Printf("epoch %d: waiting for replay buffer to fill", epoch)
			time.Sleep(time.Second)
		}
		log.Printf("epoch %d complete", epoch)
		if err := az.Save(*modelPath, cfg, net); err != nil {
			log.Printf("checkpoint save failed: %+v", err)
		}
	}

	cancel()
	if err := run.Close(); err != nil {
		log.Fatalf("shutdown: %+v", err)
	}
}
