//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/markkurossi/halfgates/circuit"
	"github.com/markkurossi/halfgates/env"
	"github.com/spf13/pflag"
)

func main() {
	dot := pflag.Bool("dot", false, "print Graphviz dot output")
	bristol := pflag.Bool("bristol", false, "print the circuit in Bristol format")
	dump := pflag.Bool("dump", false, "print the gate list")
	eval := pflag.StringP("eval", "e", "",
		"evaluate with comma-separated input bundle values")
	pflag.Parse()

	log.SetFlags(0)
	heading := color.New(color.FgHiWhite, color.Bold)
	cfg := new(env.Config)

	for _, file := range pflag.Args() {
		c, err := circuit.ParseFile(file)
		if err != nil {
			log.Fatal(err)
		}
		switch {
		case *dot:
			c.Dot(os.Stdout)

		case *bristol:
			if err := c.MarshalBristol(os.Stdout); err != nil {
				log.Fatal(err)
			}

		case *dump:
			c.Dump()

		case len(*eval) > 0:
			var inputs []*big.Int
			for _, v := range strings.Split(*eval, ",") {
				i, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
				if !ok {
					log.Fatalf("invalid input: %s", v)
				}
				inputs = append(inputs, i)
			}
			result, err := c.Compute(inputs)
			if err != nil {
				log.Fatal(err)
			}
			for idx, r := range result {
				heading.Printf("Result[%d]: ", idx)
				fmt.Printf("%x\n", r)
			}

		default:
			heading.Printf("%s\n", file)
			c.PrintStats(os.Stdout)
			fmt.Printf("Fingerprint: %x\n", c.Fingerprint(cfg.GetHash()))
		}
	}
}
