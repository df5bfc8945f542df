package simcli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/kevintm78/zswap/pkg/swapdev"
	"github.com/kevintm78/zswap/pkg/zswap"
)

const shellHelp = `commands:
  store <offset> <fill-byte>   compress and admit a page of fill-byte
  load <offset>                decompress a page and show its first bytes
  invalidate <offset>          drop one slot
  purge                        drop the whole area
  writeback <n>                evict up to n LRU entries to the device
  stats                        show counters
  help                         this text
  quit                         exit`

var shellCommands = []string{"store", "load", "invalidate", "purge", "writeback", "stats", "help", "quit"}

// runShell runs the interactive inspector. When stdin is a terminal it
// uses line editing with completion; otherwise it degrades to a plain
// scanner so the shell stays scriptable.
func runShell(in io.Reader, out, errOut io.Writer, cache *zswap.Cache, dev *swapdev.Device) int {
	fmt.Fprintf(out, "zswapsim shell (%s compressor), 'help' for commands\n", cache.Compressor())

	next, closeInput := lineSource(in)
	defer closeInput()

	for {
		line, err := next()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(errOut, "error:", err)

				return 1
			}

			return 0
		}

		if quit := dispatch(out, errOut, cache, dev, strings.Fields(line)); quit {
			return 0
		}
	}
}

// lineSource picks liner for terminals, bufio for pipes.
func lineSource(in io.Reader) (func() (string, error), func()) {
	f, ok := in.(*os.File)
	if ok && liner.TerminalSupported() && f == os.Stdin {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)
		l.SetCompleter(func(line string) []string {
			var matches []string

			for _, c := range shellCommands {
				if strings.HasPrefix(c, strings.ToLower(line)) {
					matches = append(matches, c)
				}
			}

			return matches
		})

		return func() (string, error) {
			line, err := l.Prompt("zswap> ")
			if err == nil {
				l.AppendHistory(line)
			}

			return line, err
		}, func() { _ = l.Close() }
	}

	scanner := bufio.NewScanner(in)

	return func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}

			return "", io.EOF
		}

		return scanner.Text(), nil
	}, func() {}
}

// dispatch executes one shell command. Returns true on quit.
func dispatch(out, errOut io.Writer, cache *zswap.Cache, dev *swapdev.Device, fields []string) bool {
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprintln(out, shellHelp)

	case "stats":
		printStats(out, cache, dev)

	case "purge":
		cache.InvalidateArea(0)
		fmt.Fprintln(out, "purged")

	case "store":
		if len(fields) != 3 {
			fmt.Fprintln(errOut, "usage: store <offset> <fill-byte>")

			break
		}

		offset, err1 := parseUint(fields[1])
		fill, err2 := parseUint(fields[2])

		if err1 != nil || err2 != nil || fill > 0xff {
			fmt.Fprintln(errOut, "usage: store <offset> <fill-byte>")

			break
		}

		page := make([]byte, zswap.PageSize)
		for i := range page {
			page[i] = byte(fill)
		}

		if err := cache.Store(0, offset, page); err != nil {
			fmt.Fprintln(out, "rejected:", err)
		} else {
			fmt.Fprintln(out, "stored")
		}

	case "load":
		if len(fields) != 2 {
			fmt.Fprintln(errOut, "usage: load <offset>")

			break
		}

		offset, err := parseUint(fields[1])
		if err != nil {
			fmt.Fprintln(errOut, "usage: load <offset>")

			break
		}

		page := make([]byte, zswap.PageSize)
		if err := cache.Load(0, offset, page); err != nil {
			fmt.Fprintln(out, "miss:", err)
		} else {
			fmt.Fprintf(out, "hit: % x ...\n", page[:16])
		}

	case "invalidate":
		if len(fields) != 2 {
			fmt.Fprintln(errOut, "usage: invalidate <offset>")

			break
		}

		offset, err := parseUint(fields[1])
		if err != nil {
			fmt.Fprintln(errOut, "usage: invalidate <offset>")

			break
		}

		cache.InvalidatePage(0, offset)
		fmt.Fprintln(out, "invalidated")

	case "writeback":
		if len(fields) != 2 {
			fmt.Fprintln(errOut, "usage: writeback <n>")

			break
		}

		n, err := parseUint(fields[1])
		if err != nil {
			fmt.Fprintln(errOut, "usage: writeback <n>")

			break
		}

		freed := cache.Writeback(0, int(n))
		dev.Wait()
		fmt.Fprintf(out, "freed %d\n", freed)

	default:
		fmt.Fprintln(errOut, "unknown command:", fields[0])
	}

	return false
}

// parseUint accepts decimal and 0x-prefixed hex.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}
