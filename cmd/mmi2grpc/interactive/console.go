// Package interactive provides a console for sending MMIs by hand, without
// a PTS attached.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/pts-bot/mmi2grpc/pkg/mmi"
)

// Dispatcher is the MMI endpoint the console drives.
type Dispatcher interface {
	SessionID() string
	TestStarted(ctx context.Context, test string, ptsAddr []byte) (string, error)
	Interact(ctx context.Context, req *mmi.Request) (string, error)
}

// Config configures the console.
type Config struct {
	// Profile is sent with every MMI.
	Profile string

	// PTSAddr is the initial PTS address.
	PTSAddr []byte

	// MMIs are offered for tab completion and by "list".
	MMIs []string
}

// Console is the interactive MMI prompt.
type Console struct {
	disp    Dispatcher
	profile string
	ptsAddr []byte
	test    string
	mmis    []string

	out io.Writer
	rl  *readline.Instance
}

// New creates a console reading from the terminal.
func New(d Dispatcher, cfg Config) (*Console, error) {
	c := newConsole(d, cfg, nil)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mmi> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    c.completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c.rl = rl
	c.out = rl.Stdout()
	return c, nil
}

func newConsole(d Dispatcher, cfg Config, out io.Writer) *Console {
	return &Console{
		disp:    d,
		profile: cfg.Profile,
		ptsAddr: cfg.PTSAddr,
		mmis:    cfg.MMIs,
		out:     out,
	}
}

func (c *Console) completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(c.mmis))
	for _, name := range c.mmis {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("test"),
		readline.PcItem("mmi", items...),
		readline.PcItem("addr"),
		readline.PcItem("list"),
		readline.PcItem("status"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if c.Execute(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It reports true when the console
// should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "test", "t":
		c.cmdTest(ctx, args)
	case "mmi", "m":
		c.cmdMMI(ctx, args)
	case "addr":
		c.cmdAddr(args)
	case "list", "ls":
		for _, name := range c.mmis {
			fmt.Fprintf(c.out, "  %s\n", name)
		}
	case "status":
		c.cmdStatus()
	case "quit", "exit", "q":
		return true
	default:
		if strings.HasPrefix(parts[0], "TSC_") {
			c.cmdMMI(ctx, parts)
			return false
		}
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) cmdTest(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: test <test-id>")
		return
	}
	c.test = args[0]
	answer, err := c.disp.TestStarted(ctx, c.test, c.ptsAddr)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Test %s started: %s\n", c.test, answer)
}

// cmdMMI sends an MMI. Anything after the name is the description; none
// skips description validation.
func (c *Console) cmdMMI(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: mmi <name> [description]")
		return
	}
	if c.test == "" {
		fmt.Fprintln(c.out, "No test started (use: test <test-id>)")
		return
	}
	answer, err := c.disp.Interact(ctx, &mmi.Request{
		Profile:     c.profile,
		Test:        c.test,
		Name:        args[0],
		Description: strings.Join(args[1:], " "),
		PTSAddr:     c.ptsAddr,
	})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s -> %s\n", args[0], answer)
}

func (c *Console) cmdAddr(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "PTS address: %s\n", mmi.FormatAddress(c.ptsAddr))
		return
	}
	addr, err := mmi.ParseAddress(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid address %q: %v\n", args[0], err)
		return
	}
	c.ptsAddr = addr
	fmt.Fprintf(c.out, "PTS address: %s\n", mmi.FormatAddress(addr))
}

func (c *Console) cmdStatus() {
	test := c.test
	if test == "" {
		test = "(none)"
	}
	fmt.Fprintf(c.out, "Session: %s\n", c.disp.SessionID())
	fmt.Fprintf(c.out, "Profile: %s\n", c.profile)
	fmt.Fprintf(c.out, "Test:    %s\n", test)
	fmt.Fprintf(c.out, "PTS:     %s\n", mmi.FormatAddress(c.ptsAddr))
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
MMI Console Commands:
  test <test-id>             - Start a test case (e.g. HFP/AG/SLC/BV-01-C)
  mmi <name> [description]   - Send an MMI (TSC_... alone also works)
  list                       - List known MMIs
  addr [AA:BB:CC:DD:EE:FF]   - Show or set the PTS address
  status                     - Show session state
  quit                       - Exit`)
}
