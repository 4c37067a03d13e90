// Command run-simultaneous-ltbr runs a simultaneous learning tournament.
package main

import (
	_ "expvar"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/rs/zerolog"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/games"
	"github.com/timpalpant/go-efr/tournament"
)

func main() {
	gameName := flag.String("game", "leduc_poker", "The game to play.")
	samplerName := flag.String("sampler", "null", "The sampler to use.")
	iterations := flag.Int("t", 500, "The number of iterations to run.")
	seed := flag.Uint64("random_seed", 0, "Seed for a sampler's random engine.")
	showNum := flag.Bool("show_num", false,
		"Show the number of table entries that would be produced without computing them.")
	group := flag.Int("alg_group", 0,
		"0 => efficient EFR instances only, 1 => efficient and behavioral deviation EFR instances.")
	threads := flag.Int("threads", 1, "The number of threads to use.")
	records := flag.String("records", "", "File to write JSON records of every update to.")
	httpAddr := flag.String("http", "", "Address to serve expvar metrics on.")
	flag.Parse()
	defer glog.Flush()

	profiles := efr.ProfilesInGroup(*group)
	if *showNum {
		fmt.Println(tournament.NumSimultaneousEntries(len(profiles)))
		return
	}

	if *httpAddr != "" {
		go http.ListenAndServe(*httpAddr, nil)
	}

	game, err := games.Load(*gameName)
	if err != nil {
		glog.Fatal(err)
	}

	cfg := tournament.Config{
		Game:       game,
		Sampler:    *samplerName,
		Seed:       *seed,
		Iterations: *iterations,
		Workers:    *threads,
		Profiles:   profiles,
	}

	if *records != "" {
		f, err := os.Create(*records)
		if err != nil {
			glog.Fatal(err)
		}
		defer f.Close()

		logger := zerolog.New(zerolog.SyncWriter(f)).With().Timestamp().Logger()
		cfg.Records = &logger
	}

	glog.Infof("Running simultaneous tournament of %d profiles on %s for %d iterations",
		len(profiles), game.Name(), *iterations)
	result, err := tournament.RunSimultaneous(cfg)
	if err != nil {
		glog.Fatal(err)
	}

	if err := result.WriteTable(os.Stdout); err != nil {
		glog.Fatal(err)
	}
}
