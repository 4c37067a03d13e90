// Command show-game-size prints, for each player, the number of
// information states with a choice, the range of their action counts and
// the range of their depths, followed by the same summary for all players.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/timpalpant/go-efr/games"
	"github.com/timpalpant/go-efr/tree"
)

func main() {
	gameName := flag.String("game", "leduc_poker", "The game.")
	utilities := flag.Bool("utilities", false, "Also show the minimum and maximum utility.")
	flag.Parse()
	defer glog.Flush()

	game, err := games.Load(*gameName)
	if err != nil {
		glog.Fatal(err)
	}

	root := game.NewInitialState()
	fmt.Printf("# %s\n", game.Name())
	fmt.Println("# player  num_info_sets  min_|A|  max_|A|  min_depth  max_depth")

	var total tree.PlayerSize
	for player := 0; player < game.NumPlayers(); player++ {
		size := tree.Size(root, player)
		printSize(player+1, size)
		total = total.Merge(size)
	}
	printSize(0, total)

	if *utilities {
		radius := (game.MaxUtility() - game.MinUtility()) / 2.0
		fmt.Printf("[%0.2g, %0.2g] or [-%0.2g, +%0.2g]\n",
			game.MinUtility(), game.MaxUtility(), radius, radius)
	}
}

func printSize(player int, s tree.PlayerSize) {
	fmt.Printf("%d  %d  %d  %d  %d  %d\n", player,
		s.NumInfoSets, s.MinActions, s.MaxActions, s.MinDepth, s.MaxDepth)
}
