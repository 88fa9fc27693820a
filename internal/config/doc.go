// Package config provides configuration loading for projgen.
//
// Configuration is read from projgen.yaml in the workspace root, from
// PROJGEN_* environment variables and from command-line flags, in increasing
// order of precedence. A missing projgen.yaml is not an error: the defaults
// reproduce the classic layout of projects/<name> next to a shared/ directory
// and postcss.config.js in the workspace root.
//
// # Configuration File Structure
//
//	workspace: .
//	projectsDir: projects
//	sharedDir: shared
//	postcssConfig: postcss.config.js
//	template: vite-react
//	runner: bun
//	ports:
//	  min: 3000
//	  max: 4000
//	log:
//	  level: info
//	  format: text
//	serve:
//	  addr: ":8080"
//	publish:
//	  s3:
//	    bucket: my-bucket
//	    prefix: scaffolds
//	    region: us-east-1
//
// Environment variables use the upper-cased key path joined with
// underscores, e.g. PROJGEN_PUBLISH_S3_BUCKET or PROJGEN_PROJECTSDIR.
//
// # Usage
//
//	cfg, err := config.NewLoader().Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Projects:", cfg.ProjectsPath())
package config
