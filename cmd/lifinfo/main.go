// Command lifinfo lists the series stored in a LIF container.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/lif"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Usage: lifinfo <file.lif> [...]")
		os.Exit(1)
	}

	exitCode := 0
	for _, path := range flag.Args() {
		if err := describe(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func describe(path string) error {
	ctr, err := lif.Open(path)
	if err != nil {
		return err
	}
	defer ctr.Close()

	fmt.Printf("%s: %d series\n", path, ctr.SeriesCount())
	fmt.Printf("%-4s %-40s %8s %8s %8s %9s\n",
		"#", "Name", "Width", "Height", "Slices", "Channels")
	for i, info := range ctr.Series() {
		fmt.Printf("%-4d %-40s %8d %8d %8d %9d\n",
			i, info.Name, info.Width, info.Height, info.ZSlices, len(info.Channels))
	}
	return nil
}
