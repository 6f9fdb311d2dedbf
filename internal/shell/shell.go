// Package shell is the interactive front end: a small REPL over the virtual
// configuration tree with filesystem-flavored commands, path completion and
// command history.
package shell

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/pkg/logging"
)

const subsystem = "Shell"

// Shell drives a session over the virtual filesystem.
type Shell struct {
	fsys afero.Fs
	cwd  string
	out  io.Writer
}

// New builds a shell rooted at the top of the virtual tree.
func New(fsys afero.Fs) *Shell {
	return &Shell{
		fsys: fsys,
		cwd:  "/",
		out:  os.Stdout,
	}
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lisa-shell-history")
	}
	return filepath.Join(dir, "lisa", "shell-history")
}

// Run reads and executes commands until exit or EOF.
func (s *Shell) Run() error {
	hist := historyFile()
	os.MkdirAll(filepath.Dir(hist), 0o755)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lisa> ",
		HistoryFile:     hist,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s.printWelcome()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := s.execute(line); quit {
			break
		}
	}

	logging.Debug(subsystem, "Session ended")
	return nil
}

// completer offers the command set plus live path completion for the
// commands that take a path.
func (s *Shell) completer() *readline.PrefixCompleter {
	paths := readline.PcItemDynamic(s.completePaths)
	return readline.NewPrefixCompleter(
		readline.PcItem("ls", paths),
		readline.PcItem("cd", paths),
		readline.PcItem("cat", paths),
		readline.PcItem("write", paths),
		readline.PcItem("append", paths),
		readline.PcItem("mkdir"),
		readline.PcItem("rmdir", paths),
		readline.PcItem("activate", paths),
		readline.PcItem("deactivate", paths),
		readline.PcItem("configs"),
		readline.PcItem("features"),
		readline.PcItem("pwd"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// completePaths lists entries of the directory the partial argument points
// into, relative to the working directory.
func (s *Shell) completePaths(line string) []string {
	fields := strings.Fields(line)
	partial := ""
	if len(fields) > 1 && !strings.HasSuffix(line, " ") {
		partial = fields[len(fields)-1]
	}

	dir := s.resolve(partial)
	base := ""
	if partial != "" && !strings.HasSuffix(partial, "/") {
		dir, base = path.Split(dir)
		dir = path.Clean(dir)
	}

	infos, err := afero.ReadDir(s.fsys, dir)
	if err != nil {
		return nil
	}
	prefix := partial[:len(partial)-len(base)]

	var out []string
	for _, fi := range infos {
		name := fi.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if fi.IsDir() {
			name += "/"
		}
		out = append(out, prefix+name)
	}
	return out
}

// resolve turns a command argument into an absolute virtual path.
func (s *Shell) resolve(arg string) string {
	if arg == "" {
		return s.cwd
	}
	if strings.HasPrefix(arg, "/") {
		return path.Clean(arg)
	}
	return path.Clean(path.Join(s.cwd, arg))
}
