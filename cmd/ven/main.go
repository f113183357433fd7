// Command ven is the Ven engine's CLI entry point (spec.md §6): it reads
// a .ven source file, drives it through pkg/hub.Program's Read → Compile
// → Optimize → Evaluate pipeline, and reports whatever the requested
// halt point and flags ask for.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmay/venlang/pkg/config"
	"github.com/rmay/venlang/pkg/hub"
	"github.com/rmay/venlang/pkg/scheduler"
)

var (
	portFlag      int
	inspectFlag   bool
	measureFlag   bool
	timetableFlag bool
	justFlag      string
	resultFlag    bool
	optimizeFlag  int
	testFlag      bool
	serializeFlag bool
	withFlag      []string
)

func main() {
	root := &cobra.Command{
		Use:   "ven [file.ven]",
		Short: "Run a Ven program",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	root.Flags().IntVarP(&portFlag, "port", "p", 0, "external resolver port")
	root.Flags().BoolVarP(&inspectFlag, "inspect", "i", false, "debug logging and lexer trace")
	root.Flags().BoolVarP(&measureFlag, "measure", "m", false, "report total pipeline time")
	root.Flags().BoolVarP(&timetableFlag, "timetable", "M", false, "per-op timing trace")
	root.Flags().StringVarP(&justFlag, "just", "j", "", "halt after STEP: read|transform|optimize|compile|evaluate")
	root.Flags().BoolVarP(&resultFlag, "result", "r", false, "print the final value")
	root.Flags().IntVarP(&optimizeFlag, "optimize", "O", 0, "optimizer pass budget (multiplied by 8)")
	root.Flags().BoolVarP(&testFlag, "test", "t", false, "activate `ensure`")
	root.Flags().BoolVarP(&serializeFlag, "serialize", "s", false, "JSON-encode the halted-at stage's product")
	root.Flags().StringArrayVar(&withFlag, "with", nil, "enable side-effect category (repeatable, --with=CATEGORY)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := config.Load("ven.yaml")
	if err != nil {
		return fmt.Errorf("loading ven.yaml: %w", err)
	}

	log := newLogger(inspectFlag, timetableFlag)

	passBudget := cfg.Optimize
	if optimizeFlag > 0 {
		passBudget = optimizeFlag
	}
	passBudget *= 8

	categories := cfg.With
	if len(withFlag) > 0 {
		categories = withFlag
	}
	for _, c := range categories {
		log.WithField("category", c).Debug("side-effect category enabled")
	}

	scriptDir := filepath.Dir(path)
	h := hub.New(newFSResolver(scriptDir, nil), log)
	prog := hub.NewProgram(h)
	prog.Scheduler = scheduler.New(cmd.Context())

	opts := hub.Options{
		Just:       hub.Stage(justFlag),
		Serialize:  serializeFlag,
		PassBudget: passBudget,
		TestMode:   testFlag,
		Trace:      inspectFlag || timetableFlag,
		WithResult: resultFlag,
	}

	start := time.Now()
	res, err := prog.Run(string(data), path, opts)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if measureFlag {
		fmt.Fprintf(os.Stderr, "pipeline: %s\n", elapsed)
	}
	if opts.Serialize && res.JSON != nil {
		fmt.Println(string(res.JSON))
	} else if resultFlag && res.Value != nil {
		fmt.Println(res.Value.String())
	}
	return nil
}

func newLogger(inspect, timetable bool) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&easy.Formatter{
		TimestampFormat: "15:04:05.000",
		LogFormat:       "[%lvl%] %time% %msg%\n",
	})
	switch {
	case timetable:
		l.SetLevel(logrus.TraceLevel)
	case inspect:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return logrus.NewEntry(l)
}
