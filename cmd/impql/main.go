// Command impql is the CLI entrypoint: load a bag and a program, run the
// block under a cursor, print results and pending asserts. -watch
// supplements original_source/src/main.rs's --watch mode, which simply
// reran the whole program in a loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/impql/impql/bagio"
	"github.com/impql/impql/driver"
	"github.com/impql/impql/eav"
)

func main() {
	bagPath := flag.String("bag", "", "path to a bag JSON file (spec §6.2)")
	programPath := flag.String("program", "", "path to a program text file")
	cursor := flag.Int("cursor", 0, "character offset selecting which block to run")
	savePath := flag.String("save", "", "path to write the bag back to after each run (defaults to -bag)")
	watch := flag.Duration("watch", 0, "re-run the selected block on this interval instead of once")
	verbose := flag.Bool("v", false, "trace-level logging")
	flag.Parse()

	if *bagPath == "" || *programPath == "" {
		fmt.Fprintln(os.Stderr, "impql: -bag and -program are required")
		os.Exit(2)
	}
	if *savePath == "" {
		*savePath = *bagPath
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.TraceLevel)
	}
	entry := log.WithField("component", "impql")

	bag, err := loadBag(*bagPath)
	if err != nil {
		entry.WithError(err).Fatal("failed to load bag")
	}
	program, err := os.ReadFile(*programPath)
	if err != nil {
		entry.WithError(err).Fatal("failed to read program")
	}

	sess := driver.NewSession(bag, string(program), driver.LogObserver{Log: entry}, entry)

	runOnce := func() {
		out := sess.RunAt(*cursor)
		printOutcome(out)
		if err := saveBag(*savePath, sess.Bag()); err != nil {
			entry.WithError(err).Error("failed to save bag")
		}
	}

	if *watch <= 0 {
		runOnce()
		return
	}
	for {
		runOnce()
		time.Sleep(*watch)
	}
}

func loadBag(path string) (*eav.Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return eav.NewBag(), nil
		}
		return nil, err
	}
	defer f.Close()
	return bagio.Load(f)
}

func saveBag(path string, bag *eav.Bag) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bagio.Save(f, bag)
}

func printOutcome(out driver.Outcome) {
	switch {
	case out.ParseErr != nil:
		fmt.Println("parse error:", out.ParseErr)
		return
	case out.CompileErr != nil:
		fmt.Println("compile error:", out.CompileErr)
		return
	case out.RunErr != nil:
		fmt.Println("run error:", out.RunErr)
		return
	}
	for _, row := range out.Results {
		for i, v := range row {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Printf("%s=%s", out.Named[i], v.String())
		}
		fmt.Println()
	}
	for _, a := range out.Asserts {
		fmt.Printf("assert [%s, %s, %s]\n", a[0].String(), a[1].String(), a[2].String())
	}
}
