// This file is part of mips - https://github.com/ge42dal/MIPS
//
// Copyright 2025 The mips authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command mips is the front-end for the MIPS32 toolchain: a two-pass
// assembler, a binary-image runner, a one-shot interpreter and a
// line-oriented debugger.
//
//	mips assemble [input.asm [output.bin]]
//	mips execute <binary>
//	mips interpret <input.asm>
//	mips debug <input.asm>
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ge42dal/MIPS/asm"
	"github.com/ge42dal/MIPS/dbg"
	"github.com/ge42dal/MIPS/vm"
	"github.com/pkg/errors"
)

// Conventional entry state: the stack pointer starts at the top of the
// address space, word aligned.
const initialSP = 0xFFFFFFFC

var (
	debug bool
	noRaw bool
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %[1]s [flags] <command> [args]

Commands:
  assemble [in.asm [out.bin]]  assemble to the binary object format
                               (stdin/stdout when files are omitted)
  execute <binary>             load a binary image and run it
  interpret <in.asm>           assemble and run in one shot
  debug <in.asm>               assemble and enter the debugger

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	flag.BoolVar(&noRaw, "noraw", false, "disable raw terminal IO")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	var err error
	switch cmd := args[0]; cmd {
	case "assemble":
		err = cmdAssemble(args[1:])
	case "execute":
		err = cmdExecute(args[1:])
	case "interpret":
		err = cmdInterpret(args[1:])
	case "debug":
		err = cmdDebug(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}
	atExit(err)
}

func atExit(err error) {
	if err == nil {
		return
	}
	var list asm.ErrList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintf(os.Stderr, "Error: %v\n", e)
		}
		os.Exit(1)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func assembleFile(fileName string) (*asm.Program, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer f.Close()
	return asm.Assemble(fileName, bufio.NewReader(f))
}

func cmdAssemble(args []string) error {
	var in io.Reader = os.Stdin
	name := "stdin"
	switch len(args) {
	case 0:
	case 1, 2:
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = bufio.NewReader(f)
		name = args[0]
	default:
		return errors.New("assemble takes at most an input and an output file")
	}
	prog, err := asm.Assemble(name, in)
	if err != nil {
		return err
	}
	img := &vm.Image{Entry: prog.Entry, Data: prog.Image}
	if len(args) == 2 {
		return vm.SaveImageFile(img, args[1])
	}
	w := bufio.NewWriter(os.Stdout)
	if err := img.Write(w); err != nil {
		return err
	}
	return errors.Wrap(w.Flush(), "write output")
}

// newCPU builds a CPU on the standard streams, switching the terminal to
// raw mode when possible so that read_char traps see single keystrokes.
func newCPU() (c *vm.CPU, restore func(), err error) {
	restore = func() {}
	if !noRaw {
		if fn, e := setRawIO(); e == nil {
			restore = fn
		}
	}
	c, err = vm.New(vm.Input(os.Stdin), vm.Output(os.Stdout))
	if err != nil {
		restore()
		return nil, nil, err
	}
	return c, restore, nil
}

// runImage loads the image at address 0 and runs from its entry point.
func runImage(cpu *vm.CPU, img *vm.Image) error {
	st := cpu.State()
	if err := st.Mem.LoadImage(img.Data, 0); err != nil {
		return err
	}
	st.SetPC(img.Entry)
	st.SetReg(vm.SP, initialSP)
	return cpu.Run()
}

func cmdExecute(args []string) error {
	if len(args) != 1 {
		return errors.New("execute takes a binary file")
	}
	img, err := vm.LoadImageFile(args[0])
	if err != nil {
		return err
	}
	cpu, restore, err := newCPU()
	if err != nil {
		return err
	}
	defer restore()
	return runImage(cpu, img)
}

func cmdInterpret(args []string) error {
	if len(args) != 1 {
		return errors.New("interpret takes an assembly file")
	}
	prog, err := assembleFile(args[0])
	if err != nil {
		return err
	}
	if _, ok := prog.Labels["main"]; !ok && len(prog.Image) > 0 {
		return errors.Errorf("%s: no 'main' label", args[0])
	}
	cpu, restore, err := newCPU()
	if err != nil {
		return err
	}
	defer restore()
	return runImage(cpu, &vm.Image{Entry: prog.Entry, Data: prog.Image})
}

func cmdDebug(args []string) error {
	if len(args) != 1 {
		return errors.New("debug takes an assembly file")
	}
	prog, err := assembleFile(args[0])
	if err != nil {
		return err
	}
	// the REPL and the program's read traps share one reader
	in := bufio.NewReader(os.Stdin)
	cpu, err := vm.New(vm.Input(in), vm.Output(os.Stdout))
	if err != nil {
		return err
	}
	st := cpu.State()
	if err := st.Mem.LoadImage(prog.Image, 0); err != nil {
		return err
	}
	st.SetPC(prog.Entry)
	st.SetReg(vm.SP, initialSP)
	fmt.Printf("Program loaded. Entry point: 0x%X\n", prog.Entry)
	return dbg.New(prog, cpu, os.Stdout).Run(in)
}
