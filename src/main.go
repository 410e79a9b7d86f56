package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/Harry-Lees/Wellick/src/compiler"
	"github.com/Harry-Lees/Wellick/src/frontend"
	"github.com/Harry-Lees/Wellick/src/util"
)

// run begins reading source code and executes compiler stages.
// Behaviour is defined by the util.Options structure.
func run(opt util.Options) error {
	// Read source code.
	src, err := util.ReadSource(opt)
	if err != nil {
		return errors.Wrap(err, "could not read source code")
	}

	// If -ts flag was passed: output token stream and exit.
	if opt.TokenStream {
		return frontend.TokenStream(src)
	}

	// Generate syntax tree by parsing source code.
	decls, err := frontend.Parse(src)
	if err != nil {
		return err
	}

	if opt.Ast || opt.Verbose {
		_, _ = pretty.Println(decls)
	}
	if opt.Ast {
		return nil
	}

	// Translate the declarations and emit the object file.
	c := compiler.NewCompiler(opt)
	defer c.Dispose()
	if err := c.Compile(decls); err != nil {
		return err
	}

	if opt.Verbose {
		fmt.Printf("wrote %s\n", opt.Out)
	}
	return nil
}

func main() {
	// Parse command line arguments.
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}
