package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/apiclient"
	"github.com/DAVIDafergan/tatpro-intake/internal/cache"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/wizard"
)

// Lister fetches the server-side listing for the admin screen.
type Lister interface {
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// Remover deletes a server-side document. A Lister that also implements it
// makes delete act on the listing it shows.
type Remover interface {
	Delete(ctx context.Context, id string) error
}

// REPL drives a wizard session from line-oriented input.
type REPL struct {
	s      *wizard.Session
	in     *bufio.Scanner
	out    io.Writer
	tag    language.Tag
	lister Lister
}

func NewREPL(s *wizard.Session, in io.Reader, out io.Writer, tag language.Tag, lister Lister) *REPL {
	return &REPL{s: s, in: bufio.NewScanner(in), out: out, tag: tag, lister: lister}
}

const helpText = `commands:
  show                      current step and its fields
  set <field> <value>       set a field on the form
  next | back               move through the steps
  register                  record the quote (price summary only)
  home                      back to the welcome screen
  admin | close             open or close the admin screen
  login <user> <code>       unlock the admin listing
  logout
  list                      show recorded submissions (admin)
  delete <id>               delete a listed submission (admin)
  quit`

// Run reads commands until quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	r.show()
	for {
		fmt.Fprint(r.out, "> ")
		line, ok := r.readLine()
		if !ok {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		switch cmd {
		case "":
		case "help", "?":
			fmt.Fprintln(r.out, helpText)
		case "show":
			r.show()
		case "set":
			r.set(rest)
		case "next":
			if !r.s.Advance() {
				fmt.Fprintln(r.out, "cannot continue: fill in every required field on this step")
				continue
			}
			r.show()
		case "back":
			if r.s.Retreat() {
				r.show()
			}
		case "register":
			r.register(ctx)
		case "home":
			r.s.Restart()
			r.show()
		case "admin":
			r.s.OpenAdmin()
			r.show()
		case "close":
			r.s.CloseAdmin()
			r.show()
		case "login":
			r.login(ctx, rest)
		case "logout":
			r.s.Logout()
			fmt.Fprintln(r.out, "logged out")
		case "list":
			r.list(ctx)
		case "delete":
			r.delete(ctx, rest)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(r.out, "unknown command %q, try help\n", cmd)
		}
	}
}

func (r *REPL) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

func (r *REPL) show() {
	step := r.s.Step()
	fmt.Fprintf(r.out, "[%s]", step)
	if frac, ok := r.s.Progress(); ok {
		fmt.Fprintf(r.out, " %.0f%%", frac*100)
	}
	fmt.Fprintln(r.out)

	for _, name := range wizard.StepFields(step) {
		v, _ := r.s.Field(name)
		fmt.Fprintf(r.out, "  %-18s %s\n", name, v)
	}
	switch step {
	case domain.StepPriceSummary:
		fmt.Fprintf(r.out, "  price: %s\n", r.s.Price().Label(r.tag))
	case domain.StepAdmin:
		if g := r.s.Gate(); g.LoggedIn() {
			fmt.Fprintf(r.out, "  logged in as %s\n", g.Username())
		} else {
			fmt.Fprintln(r.out, "  login <user> <code> to continue")
		}
	}
}

func (r *REPL) set(args string) {
	name, value, _ := strings.Cut(args, " ")
	if err := r.s.Set(name, strings.TrimSpace(value)); err != nil {
		fmt.Fprintf(r.out, "set %s: %v\n", name, err)
	}
}

func (r *REPL) register(ctx context.Context) {
	sub, err := r.s.Register(ctx)
	var pe *wizard.PublishError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(r.out, "saved locally as %s, but sending failed: %v\n", sub.ID, pe.Err)
	case err != nil:
		fmt.Fprintf(r.out, "register: %v\n", err)
		return
	default:
		fmt.Fprintf(r.out, "registered %s (%s)\n", sub.ID, sub.CalculatedPrice)
	}
	r.show()
}

func (r *REPL) login(ctx context.Context, args string) {
	user, code, _ := strings.Cut(args, " ")
	err := r.s.Login(ctx, user, strings.TrimSpace(code))
	switch {
	case errors.Is(err, admin.ErrRejected):
		fmt.Fprintln(r.out, "wrong access code")
	case err != nil:
		fmt.Fprintf(r.out, "login: %v\n", err)
	default:
		r.show()
		r.list(ctx)
	}
}

func (r *REPL) list(ctx context.Context) {
	if !r.s.Gate().LoggedIn() {
		fmt.Fprintln(r.out, "admin login required")
		return
	}
	if r.lister != nil {
		docs, err := r.lister.ListAll(ctx)
		if err != nil {
			fmt.Fprintf(r.out, "list: %v\n", err)
			return
		}
		for _, d := range docs {
			fmt.Fprintf(r.out, "%v  %v  %v  %v  %v\n", d[domain.KeyID], d["timestamp"], d["yeshivaName"], d["phoneNumber"], d["calculatedPrice"])
		}
		fmt.Fprintf(r.out, "%d submission(s)\n", len(docs))
		return
	}
	subs := r.s.Store().List()
	for _, sub := range subs {
		fmt.Fprintf(r.out, "%s  %s  %s  %s  %s\n", sub.ID, sub.Timestamp, sub.YeshivaName, sub.PhoneNumber, sub.CalculatedPrice)
	}
	fmt.Fprintf(r.out, "%d submission(s)\n", len(subs))
}

// delete asks for confirmation on the next input line. It removes the
// document from the server when the listing comes from there, and from the
// local cache otherwise.
func (r *REPL) delete(ctx context.Context, id string) {
	if !r.s.Gate().LoggedIn() {
		fmt.Fprintln(r.out, "admin login required")
		return
	}
	var err error
	if rm, ok := r.lister.(Remover); ok {
		err = r.deleteRemote(ctx, rm, id)
	} else {
		err = r.s.Store().Delete(id, func(sub domain.Submission) bool {
			return r.confirm(fmt.Sprintf("%s (%s)", sub.ID, sub.YeshivaName))
		})
	}
	var se *apiclient.StatusError
	switch {
	case errors.Is(err, cache.ErrNotFound), errors.As(err, &se) && se.Code == http.StatusNotFound:
		fmt.Fprintf(r.out, "no submission %s\n", id)
	case errors.Is(err, cache.ErrCancelled):
		fmt.Fprintln(r.out, "kept")
	case err != nil:
		fmt.Fprintf(r.out, "delete: %v\n", err)
	default:
		fmt.Fprintln(r.out, "deleted")
	}
}

func (r *REPL) deleteRemote(ctx context.Context, rm Remover, id string) error {
	if !r.confirm(id) {
		return cache.ErrCancelled
	}
	return rm.Delete(ctx, id)
}

func (r *REPL) confirm(what string) bool {
	fmt.Fprintf(r.out, "delete %s? [y/N] ", what)
	answer, _ := r.readLine()
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
