// Package generator materializes a project directory from a template.
//
// A run is a single linear pass:
//
//  1. validate the project name (no I/O happens for an invalid name)
//  2. pick the dev-server port and render every file in memory
//  3. write the files into a staging directory next to the project
//  4. commit: rename the staging tree into place when the project is new,
//     or rename each staged file over its counterpart when it exists
//  5. optionally publish the rendered files
//
// A failure before the commit leaves no trace besides the projects directory
// itself. Re-running with an existing name overwrites the generated files
// without asking and leaves every other file in the project alone.
//
// # Usage
//
//	gen, err := generator.New(generator.Options{Config: cfg})
//	if err != nil {
//	    return err
//	}
//	res, err := gen.Generate(ctx, "liquid-glass")
//
// Progress can be observed per run:
//
//	res, err := gen.Run(ctx, generator.Request{
//	    Name: "liquid-glass",
//	    Observer: func(ev generator.Event) {
//	        fmt.Println(ev.Kind, ev.Path)
//	    },
//	})
package generator
