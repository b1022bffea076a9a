package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/termfx/typealign/core"
	"github.com/termfx/typealign/db"
	"github.com/termfx/typealign/models"
	"github.com/termfx/typealign/providers/cpp"
)

var (
	flagOut     string
	flagDiff    bool
	flagStdout  bool
	flagVerbose bool
	flagDB      string
	flagConfig  string
	diffContext = 3
)

func main() {
	// .env is optional; missing files are fine.
	_ = godotenv.Load()
	if os.Getenv("TYPEALIGN_DEBUG") != "" {
		flagVerbose = true
	}
	if dsn := os.Getenv("TYPEALIGN_DB_PATH"); dsn != "" {
		flagDB = dsn
	}

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typealign <input-header> <target-header> <sysroot-include-dir>",
		Short: "Reconcile two IL2CPP dump headers into one typed target header",
		Long: `typealign parses a richly-typed input header and a canonically-named
target header, matches their type universes across name mangling, rewrites
the target's degraded field types against the input, and emits a new
target header with the target's names and the input's layout fidelity.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReconcile,
	}
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output header path (default: <target>_aligned.h).")
	cmd.Flags().BoolVarP(&flagDiff, "diff", "D", false, "Print a unified diff against the original target header.")
	cmd.Flags().IntVarP(&diffContext, "diff-context", "C", 3, "Lines of context for the diff.")
	cmd.Flags().BoolVar(&flagStdout, "stdout", false, "Write the emitted header to stdout instead of a file.")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", flagVerbose, "Enable verbose output.")
	cmd.Flags().StringVar(&flagDB, "db", flagDB, "SQLite path or libsql URL for run reports.")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Remapping config path (default: next to the executable).")
	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		// Usage goes to stdout and the exit code stays zero.
		cmd.SetOut(os.Stdout)
		_ = cmd.Usage()
		return nil
	}
	inputPath, targetPath, sysroot := args[0], args[1], args[2]
	for _, p := range []string{inputPath, targetPath} {
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			return fmt.Errorf("header not found: %s", p)
		}
	}
	if st, err := os.Stat(sysroot); err != nil || !st.IsDir() {
		return fmt.Errorf("sysroot include directory not found: %s", sysroot)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checkSysroot(sysroot)

	opts := cpp.DefaultOptions(filepath.Dir(targetPath), sysroot)
	provider := cpp.New(opts)

	start := time.Now()
	inputComp, err := provider.ParseFile(inputPath)
	if err != nil {
		return err
	}
	targetComp, err := provider.ParseTargetFile(targetPath)
	if err != nil {
		return err
	}

	engine := core.NewEngine(cfg)
	engine.Verbose = flagVerbose
	output, err := engine.Reconcile(inputComp, targetComp)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if flagDiff {
		printDiff(targetComp.Source, output, targetPath)
	}

	outPath := flagOut
	if outPath == "" {
		base := strings.TrimSuffix(targetPath, filepath.Ext(targetPath))
		outPath = base + "_aligned.h"
	}

	if flagStdout {
		fmt.Print(output)
	} else {
		writer := core.NewAtomicWriter(core.DefaultAtomicConfig())
		if err := writer.WriteFile(outPath, output); err != nil {
			return err
		}
		if flagVerbose {
			fmt.Fprintf(os.Stderr, "[DEBUG] wrote %s (%d bytes)\n", outPath, len(output))
		}
	}

	if flagDB != "" {
		if err := recordRun(engine, cfg, inputPath, targetPath, outPath, targetComp.Source, output, elapsed); err != nil {
			// Reporting is best-effort; the header is already on disk.
			fmt.Fprintf(os.Stderr, "Warning: run report not saved: %v\n", err)
		}
	}
	return nil
}

func loadConfig() (models.RemapConfig, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = models.RemapConfigPath()
		if err != nil {
			return models.RemapConfig{}, err
		}
	}
	return models.LoadRemapConfig(path)
}

// checkSysroot reports what the include directory provides; a missing
// il2cpp-class.h means the emitted header will not compile standalone.
func checkSysroot(sysroot string) {
	hw := core.NewHeaderWalker()
	found, err := hw.FindHeader(sysroot, "il2cpp-class.h")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: scanning sysroot: %v\n", err)
		return
	}
	if found == "" {
		fmt.Fprintf(os.Stderr, "Warning: il2cpp-class.h not found under %s\n", sysroot)
	}
	if flagVerbose {
		headers, _ := hw.Walk(sysroot)
		fmt.Fprintf(os.Stderr, "[DEBUG] sysroot provides %d headers\n", len(headers))
	}
}

func printDiff(original, modified, file string) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: file,
		ToFile:   file + " (aligned)",
		Context:  diffContext,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: diff failed: %v\n", err)
		return
	}
	fmt.Print(text)
}

// recordRun persists one reconciliation report row plus the unresolved
// declarations and fields it left behind.
func recordRun(engine *core.Engine, cfg models.RemapConfig, inputPath, targetPath, outPath, targetSource, output string, elapsed time.Duration) error {
	conn, err := db.Connect(flagDB, flagVerbose)
	if err != nil {
		return err
	}

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	cfgJSON, _ := json.Marshal(cfg)

	run := models.Run{
		ID:           models.NewID(),
		InputHeader:  inputPath,
		TargetHeader: targetPath,
		OutputHeader: outPath,
		InputDigest:  digest(inputData),
		TargetDigest: digest([]byte(targetSource)),
		OutputDigest: digest([]byte(output)),
		Config:       datatypes.JSON(cfgJSON),
		DurationMS:   elapsed.Milliseconds(),
	}

	for _, d := range engine.TargetDecls() {
		run.TargetCount++
		if d.Status == core.StatusUnresolved {
			run.UnresolvedCount++
			kind := "class"
			if d.Kind == core.DeclEnum {
				kind = "enum"
			}
			run.Unresolved = append(run.Unresolved, models.UnresolvedType{
				RunID: run.ID,
				Kind:  kind,
				Name:  d.Name,
			})
			continue
		}
		run.ResolvedCount++
		run.InsertedCount += len(engine.Insertions(d))
		for _, f := range d.Fields {
			if f.Status != core.StatusUnresolved {
				continue
			}
			run.UnresolvedCount++
			run.Unresolved = append(run.Unresolved, models.UnresolvedType{
				RunID: run.ID,
				Kind:  "field",
				Owner: d.Name,
				Name:  f.Name,
				Type:  f.Type.RefName(),
			})
		}
	}

	return conn.Create(&run).Error
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
