// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command evilvm assembles and runs an Evil VM program (section 6).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/evilvm/config"
	"github.com/ezrec/evilvm/vm"
)

func main() {
	os.Exit(run())
}

func run() int {
	base := vm.DefaultConfig()

	var (
		configPath string
		charBit    uint
		wordSize   uint
		addrSize   uint
		ramSize    uint
		stackSize  uint
		mapMemory  stringList
		maxTicks   uint64
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "TOML configuration file")
	flag.UintVar(&charBit, "char-bit", base.Width.CharBit, "bits per cell")
	flag.UintVar(&wordSize, "word-size", base.Width.WordSize, "cells per word")
	flag.UintVar(&addrSize, "addr-size", base.Width.AddrSize, "cells per address")
	flag.UintVar(&ramSize, "ram-size", base.RamSize, "ram space size, in cells")
	flag.UintVar(&stackSize, "stack-size", base.StackSize, "stack space size, in cells")
	flag.Var(&mapMemory, "map-memory", "alias a logical space, name=name (repeatable)")
	flag.Uint64Var(&maxTicks, "max-ticks", 0, "stop after N instructions (0 = unbounded)")
	flag.BoolVar(&verbose, "v", false, "verbose instruction trace")

	flag.Parse()

	if os.Getenv("LOGLEVEL") == "debug" {
		verbose = true
	}
	log.SetFlags(0)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source.asm>\n", os.Args[0])
		flag.PrintDefaults()
		return 64
	}

	cfg := base
	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			log.Printf("%v: %v", configPath, err)
			return 64
		}
		cfg = config.Apply(cfg, f)
	}

	// CLI flags override the config file, but only the ones the user
	// actually passed: flag.Visit only calls back for flags set on the
	// command line, so an unset flag's compiled-in default never
	// clobbers a value the config file supplied.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "char-bit":
			cfg.Width.CharBit = charBit
		case "word-size":
			cfg.Width.WordSize = wordSize
		case "addr-size":
			cfg.Width.AddrSize = addrSize
		case "ram-size":
			cfg.RamSize = ramSize
		case "stack-size":
			cfg.StackSize = stackSize
		case "map-memory":
			cfg.MapMemory = mapMemory
		case "max-ticks":
			cfg.MaxTicks = maxTicks
		}
	})

	source, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Print(err)
		return 64
	}
	defer source.Close()

	machine, err := vm.New(cfg, source, os.Stdin, os.Stdout)
	if err != nil {
		log.Print(err)
		return vm.ExitCode(err)
	}
	machine.Verbose = verbose

	if err := machine.Run(); err != nil {
		log.Print(err)
		return vm.ExitCode(err)
	}

	return 0
}

type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
