// Package simcli implements the zswapsim command: a workload driver and
// interactive inspector for the compressed swap cache.
package simcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/kevintm78/zswap/pkg/swapdev"
	"github.com/kevintm78/zswap/pkg/zswap"
)

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	flags := flag.NewFlagSet("zswapsim", flag.ContinueOnError)
	flags.SetOutput(errOut)

	flagConfig := flags.StringP("config", "c", "", "Use specified config `file` (HuJSON)")
	flagCompressor := flags.String("compressor", "", "Compressor: lz4, lzo or zstd")
	flagPoolPercent := flags.Uint("max-pool-percent", 0, "Pool ceiling as percent of total RAM")
	flagRatio := flags.Uint("max-compression-ratio", 0, "Admission ratio threshold")
	flagTotalRAM := flags.String("total-ram", "", "Override detected RAM, e.g. 64MiB")
	flagPages := flags.Int("pages", 0, "Distinct offsets the workload touches")
	flagWorkers := flags.Int("workers", 0, "Concurrent workload workers")
	flagSeed := flags.Int64("seed", 0, "Workload RNG seed")
	flagDuplicates := flags.Bool("duplicates", false, "Re-store a fraction of offsets")
	flagStatsOut := flags.String("stats-out", "", "Write final stats JSON to `file`")
	flagInteractive := flags.BoolP("interactive", "i", false, "Run the interactive shell instead of the workload")
	flagVerbose := flags.BoolP("verbose", "v", false, "Debug logging")

	if err := flags.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}

		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := LoadConfig(configPath(*flagConfig, env))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	// Flags override the config file.
	if *flagCompressor != "" {
		cfg.Compressor = *flagCompressor
	}

	if flags.Changed("max-pool-percent") {
		cfg.MaxPoolPercent = *flagPoolPercent
	}

	if flags.Changed("max-compression-ratio") {
		cfg.MaxCompressionRatio = *flagRatio
	}

	if *flagTotalRAM != "" {
		cfg.TotalRAM = *flagTotalRAM
	}

	if flags.Changed("pages") {
		cfg.Pages = *flagPages
	}

	if flags.Changed("workers") {
		cfg.Workers = *flagWorkers
	}

	if flags.Changed("seed") {
		cfg.Seed = *flagSeed
	}

	if cfg.Enabled != nil && !*cfg.Enabled {
		fmt.Fprintln(out, "zswap disabled by configuration")

		return 0
	}

	var totalRAM uint64

	if cfg.TotalRAM != "" {
		n, ramErr := units.RAMInBytes(cfg.TotalRAM)
		if ramErr != nil {
			fmt.Fprintln(errOut, "error: invalid total-ram:", ramErr)

			return 1
		}

		totalRAM = uint64(n)
	}

	log := logrus.New()
	log.SetOutput(errOut)

	if *flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	dev := swapdev.New()

	cache, err := zswap.New(zswap.Options{
		Compressor:          cfg.Compressor,
		MaxPoolPercent:      cfg.MaxPoolPercent,
		MaxCompressionRatio: cfg.MaxCompressionRatio,
		TotalRAMBytes:       totalRAM,
		SwapCache:           dev,
		BlockIO:             dev,
		Logger:              log,
	})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	cache.InitArea(0)

	var exit int
	if *flagInteractive {
		exit = runShell(in, out, errOut, cache, dev)
	} else {
		exit = runWorkload(out, errOut, cache, dev, workloadParams{
			pages:      cfg.Pages,
			workers:    cfg.Workers,
			seed:       cfg.Seed,
			duplicates: *flagDuplicates,
		})
	}

	if *flagStatsOut != "" {
		if err := writeStats(*flagStatsOut, cache.Stats()); err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}
	}

	return exit
}

// configPath resolves the config file: the explicit flag wins, then
// $ZSWAPSIM_CONFIG, then nothing.
func configPath(flagValue string, env map[string]string) string {
	if flagValue != "" {
		return flagValue
	}

	return env["ZSWAPSIM_CONFIG"]
}

// writeStats writes the stats snapshot atomically so a crash mid-dump
// never leaves a torn file for whatever scrapes it.
func writeStats(path string, stats zswap.Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}

	err = atomic.WriteFile(path, strings.NewReader(string(data)+"\n"))
	if err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}

	return nil
}

// printStats renders the counter block the way the kernel's debugfs
// directory reads.
func printStats(out io.Writer, cache *zswap.Cache, dev *swapdev.Device) {
	s := cache.Stats()

	fmt.Fprintf(out, "pool_pages              %d\n", s.PoolPages)
	fmt.Fprintf(out, "stored_pages            %d\n", s.StoredPages)
	fmt.Fprintf(out, "outstanding_writebacks  %d\n", s.OutstandingWritebacks)
	fmt.Fprintf(out, "pool_limit_hit          %d\n", s.PoolLimitHit)
	fmt.Fprintf(out, "written_back_pages      %d\n", s.WrittenBackPages)
	fmt.Fprintf(out, "reject_compress_poor    %d\n", s.RejectCompressPoor)
	fmt.Fprintf(out, "writeback_attempted     %d\n", s.WritebackAttempted)
	fmt.Fprintf(out, "reject_tmppage_fail     %d\n", s.RejectTmppageFail)
	fmt.Fprintf(out, "reject_alloc_fail       %d\n", s.RejectAllocFail)
	fmt.Fprintf(out, "reject_kmemcache_fail   %d\n", s.RejectKmemcacheFail)
	fmt.Fprintf(out, "saved_by_writeback      %d\n", s.SavedByWriteback)
	fmt.Fprintf(out, "duplicate_entry         %d\n", s.DuplicateEntry)
	fmt.Fprintf(out, "device_slots_written    %d\n", dev.Slots())
}
