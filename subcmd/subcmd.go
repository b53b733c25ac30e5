package subcmd

import (
	"flag"
	"fmt"
	"io"
)

// Program is the binary name shown in usage text.
const Program = "albumengine"

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	sc.FlagSet.Usage = func() {
		out := sc.FlagSet.Output()
		argSuffix := ""
		if sc.arg != nil {
			argSuffix = fmt.Sprintf(" <%s>", sc.arg.name)
			if sc.arg.variadic {
				argSuffix += "..."
			}
		}
		fmt.Fprintf(out, "\n"+doc+"\n\n")
		fmt.Fprintf(out, "  %s %s [flags]%s\n\n", Program, name, argSuffix)
		fmt.Fprintf(out, "flags:\n")
		sc.FlagSet.PrintDefaults()
		if sc.arg != nil {
			fmt.Fprintf(out, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
			fmt.Fprintf(out, "  \t%s\n", sc.arg.usage)
		}
	}
	return sc
}

type Subcommand struct {
	*flag.FlagSet
	arg *arg
}

type arg struct {
	name     string
	typename string
	usage    string
	variadic bool
}

func (sc *Subcommand) SetArg(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name: name, typename: typname, usage: usage}
	return sc
}

// SetArgs is like SetArg, for a command that takes one or more arguments.
func (sc *Subcommand) SetArgs(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name: name, typename: typname, usage: usage, variadic: true}
	return sc
}

// SetOutput sends usage text to w instead of stderr.
func (sc *Subcommand) SetOutput(w io.Writer) *Subcommand {
	sc.FlagSet.SetOutput(w)
	return sc
}

// ParseArgs parses flags, then checks that the positional arguments the
// command declared are present.
func (sc *Subcommand) ParseArgs(args []string) ([]string, error) {
	if err := sc.Parse(args); err != nil {
		return nil, fmt.Errorf("flag parsing err: %w", err)
	}
	rest := sc.Args()
	if sc.arg == nil {
		if len(rest) > 0 {
			sc.Usage()
			return nil, fmt.Errorf("unexpected arguments %q", rest)
		}
		return nil, nil
	}
	if len(rest) == 0 || (!sc.arg.variadic && len(rest) > 1) {
		sc.Usage()
		return nil, fmt.Errorf("expected %s <%s>", sc.Name(), sc.arg.name)
	}
	return rest, nil
}
