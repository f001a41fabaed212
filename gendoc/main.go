package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra/doc"

	"github.com/sourcebox-llc/template-lab/cmd"
)

const frontMatter = `---
title: %q
---

`

func main() {
	outputDir := "docs"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	log.Println("Generating docs...")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatal("Error creating docs dir: " + err.Error())
	}

	prepend := func(filename string) string {
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return fmt.Sprintf(frontMatter, strings.ReplaceAll(name, "_", " "))
	}
	link := func(name string) string {
		return strings.ToLower(name)
	}

	if err := doc.GenMarkdownTreeCustom(cmd.RootCmd, outputDir, prepend, link); err != nil {
		log.Fatal("Error generating documentation: " + err.Error())
	}
	log.Println("Documentation generated in " + outputDir)
}
