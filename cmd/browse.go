package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/debounce"
	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/listing"
	"github.com/kamusis/acco/internal/render"
	"github.com/kamusis/acco/internal/search"
	"github.com/kamusis/acco/internal/source"
	"github.com/kamusis/acco/internal/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the listing interactively",
	Long: `Open an interactive session over the listing. Each command re-filters
the listing and prints the visible count; 'more' loads the next page in the
background. Type 'help' for the command list.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	rootCmd.AddCommand(browseCmd)
}

const browseHelp = `Commands:
  type <text>            search as you type (applied after a short pause)
  search <text>          search immediately
  filter field=value...  location, expertise, experience, rating, price
  clear                  reset search and filters
  more                   load more accountants
  list [all]             show visible records (all: include hidden)
  count                  show the visible count
  show <ref>             show one profile
  contact <ref>          contact a profile
  options                list filter values
  help                   this text
  quit                   leave
`

func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	profiles, err := loadProfiles(ctx, cfg, flagFrom)
	if err != nil {
		return err
	}
	src, closeSrc, err := newPageSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	fmt.Printf("acco browse: %d accountant(s) loaded. Type 'help' for commands.\n", len(profiles))
	s := newSession(ctx, cfg, profiles, src, os.Stdout)
	return s.run(os.Stdin)
}

// syncWriter serializes writes from the session and background loads.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// session is one interactive browse over a listing.
type session struct {
	ctx   context.Context
	cfg   *config.Config
	out   io.Writer
	ctrl  *listing.Controller
	more  *listing.Appender
	typed *debounce.Debouncer[string]
	loads sync.WaitGroup
}

func newSession(ctx context.Context, cfg *config.Config, profiles []directory.Profile, src source.PageSource, w io.Writer) *session {
	out := &syncWriter{w: w}
	s := &session{ctx: ctx, cfg: cfg, out: out}

	contact := listing.WithContactHandler(listing.PlaceholderContact{})
	if cfg.Listing.ContactDomain != "" {
		domain := cfg.Listing.ContactDomain
		contact = listing.WithContactHandler(listing.ContactFunc(func(p directory.Profile) string {
			return fmt.Sprintf("%s\n  Reach them at %s", listing.PlaceholderContact{}.OnContactRequested(p), directory.DeriveKey(p.Name, domain))
		}))
	}
	s.ctrl = listing.New(terminal.New(out, len(profiles)), profiles,
		listing.WithLogger(logger),
		listing.WithComposedFilters(cfg.Listing.ComposeFilters),
		contact)
	s.more = listing.NewAppender(s.ctrl, src, logger)
	s.typed = debounce.New(time.Duration(cfg.Listing.DebounceMS)*time.Millisecond, func(q string) {
		s.ctrl.ApplyTextSearch(q)
	})
	return s
}

// run reads commands from in until quit or EOF, then settles pending input
// and background loads.
func (s *session) run(in io.Reader) error {
	defer s.close()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "acco> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		quit, err := s.exec(scanner.Text())
		if err != nil {
			fprintLine(s.out, iconErr, "", err.Error())
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

func (s *session) close() {
	s.typed.Flush()
	s.typed.Stop()
	s.loads.Wait()
}

// exec runs one command line.
func (s *session) exec(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "type":
		s.typed.Trigger(rest)
	case "search":
		s.typed.Stop()
		s.ctrl.ApplyTextSearch(rest)
	case "filter":
		fields, err := search.ParsePairs(strings.Fields(rest))
		if err != nil {
			return false, err
		}
		sel, err := search.ParseSelection(fields)
		if err != nil {
			return false, err
		}
		s.ctrl.ApplyStructuredFilters(sel)
	case "clear":
		s.typed.Stop()
		s.ctrl.ClearAll()
	case "more":
		s.loadMore()
	case "list", "ls":
		out, err := terminal.Records(s.ctrl.Records(), rest == "all")
		if err != nil {
			return false, err
		}
		fmt.Fprint(s.out, out)
	case "count":
		fmt.Fprintln(s.out, terminal.CountLine(s.ctrl.VisibleCount(), s.ctrl.Total()))
	case "show", "inspect":
		p, err := s.ctrl.Find(rest)
		if err != nil {
			return false, err
		}
		fmt.Fprint(s.out, terminal.Detail(p, detailURL(s.cfg, p)))
	case "contact":
		ack, err := s.ctrl.RequestContact(rest)
		if err != nil {
			return false, err
		}
		fprintLine(s.out, iconInfo, "", ack)
	case "options":
		s.printOptions()
	case "help", "?":
		fmt.Fprint(s.out, browseHelp)
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type 'help')", verb)
	}
	return false, nil
}

// loadMore requests the next page in the background. The display reports
// progress; errors are printed when the request settles.
func (s *session) loadMore() {
	if s.more.Exhausted() {
		fprintLine(s.out, iconSkip, "", listing.ErrNoMorePages.Error())
		return
	}
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		batch, err := s.more.RequestMore(s.ctx)
		switch {
		case errors.Is(err, listing.ErrLoadInFlight):
			fprintLine(s.out, iconWarn, "", "still loading, try again in a moment")
		case errors.Is(err, listing.ErrNoMorePages):
			fprintLine(s.out, iconSkip, "", err.Error())
		case err != nil:
			logger.Warn("load more failed", zap.Error(err))
			fprintLine(s.out, iconErr, "", err.Error())
		case batch.Done:
			fprintLine(s.out, iconInfo, "", "all accountants loaded")
		}
	}()
}

func (s *session) printOptions() {
	locations := map[string]bool{}
	expertise := map[string]bool{}
	for _, r := range s.ctrl.Records() {
		if r.Profile.Attrs.Location != "" {
			locations[r.Profile.Attrs.Location] = true
		}
		for _, e := range r.Profile.Attrs.Expertise {
			expertise[e] = true
		}
	}
	var exp, price []string
	for _, b := range directory.ExperienceBrackets {
		exp = append(exp, string(b))
	}
	for _, b := range directory.PriceBrackets {
		price = append(price, string(b))
	}
	fmt.Fprintf(s.out, "  location:   %s\n", strings.Join(keys(locations), ", "))
	fmt.Fprintf(s.out, "  expertise:  %s\n", strings.Join(keys(expertise), ", "))
	fmt.Fprintf(s.out, "  experience: %s\n", strings.Join(exp, ", "))
	fmt.Fprintf(s.out, "  rating:     %s\n", strings.Join(render.RatingOptions, ", "))
	fmt.Fprintf(s.out, "  price:      %s\n", strings.Join(price, ", "))
	if text, sel := s.ctrl.Controls(); text != "" || !sel.IsZero() {
		fmt.Fprintf(s.out, "  active:     %q %s\n", text, sel)
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
