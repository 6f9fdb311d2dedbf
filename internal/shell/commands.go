package shell

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/internal/api"
)

// execute runs one command line. It returns true when the session should end.
func (s *Shell) execute(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		s.printHelp()
	case "pwd":
		fmt.Fprintln(s.out, s.cwd)
	case "ls":
		s.cmdLs(args)
	case "cd":
		s.cmdCd(args)
	case "cat":
		s.cmdCat(args)
	case "write":
		s.cmdWrite(args, false)
	case "append":
		s.cmdWrite(args, true)
	case "mkdir":
		s.cmdMkdir(args)
	case "rmdir":
		s.cmdRmdir(args)
	case "activate":
		s.cmdActivate(args, true)
	case "deactivate":
		s.cmdActivate(args, false)
	case "configs":
		s.cmdConfigs()
	case "features":
		s.cmdFeatures()
	default:
		s.errorf("unknown command %q, try help", cmd)
	}
	return false
}

func (s *Shell) errorf(format string, args ...interface{}) {
	fmt.Fprintln(s.out, text.FgRed.Sprintf(format, args...))
}

func (s *Shell) printWelcome() {
	fmt.Fprintln(s.out, "lisa interactive shell. Type help for commands.")
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Commands:
  ls [path]            list a directory
  cd [path]            change the working directory
  cat <file>           print a file
  write <file> <vals>  replace a value file's content
  append <file> <vals> append to a value file
  mkdir <name>         create a configuration under configs/
  rmdir <name>         destroy a configuration
  activate [config]    activate a configuration (default: current)
  deactivate [config]  deactivate a configuration
  configs              list configurations
  features             list features and parameters
  pwd, help, exit
`)
}

func (s *Shell) cmdLs(args []string) {
	target := s.cwd
	if len(args) > 0 {
		target = s.resolve(args[0])
	}

	infos, err := afero.ReadDir(s.fsys, target)
	if err != nil {
		s.errorf("ls: %v", err)
		return
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	for _, fi := range infos {
		name := fi.Name()
		if fi.IsDir() {
			name = text.FgCyan.Sprint(name + "/")
		}
		fmt.Fprintf(s.out, "%s  %6d  %s\n", fi.Mode(), fi.Size(), name)
	}
}

func (s *Shell) cmdCd(args []string) {
	target := "/"
	if len(args) > 0 {
		target = s.resolve(args[0])
	}

	fi, err := s.fsys.Stat(target)
	if err != nil {
		s.errorf("cd: %v", err)
		return
	}
	if !fi.IsDir() {
		s.errorf("cd: %s is not a directory", target)
		return
	}
	s.cwd = target
}

func (s *Shell) cmdCat(args []string) {
	if len(args) != 1 {
		s.errorf("usage: cat <file>")
		return
	}
	data, err := afero.ReadFile(s.fsys, s.resolve(args[0]))
	if err != nil {
		s.errorf("cat: %v", err)
		return
	}
	fmt.Fprint(s.out, string(data))
}

func (s *Shell) cmdWrite(args []string, appendMode bool) {
	if len(args) < 2 {
		verb := "write"
		if appendMode {
			verb = "append"
		}
		s.errorf("usage: %s <file> <values>", verb)
		return
	}
	target := s.resolve(args[0])
	payload := strings.Join(args[1:], " ")

	flag := os.O_WRONLY
	if appendMode {
		flag |= os.O_APPEND
	}
	f, err := s.fsys.OpenFile(target, flag, 0o644)
	if err != nil {
		s.errorf("write: %v", err)
		return
	}
	_, werr := f.Write([]byte(payload))
	f.Close()
	if werr != nil {
		s.errorf("write: %v", werr)
	}
}

func (s *Shell) cmdMkdir(args []string) {
	if len(args) != 1 {
		s.errorf("usage: mkdir <name>")
		return
	}
	target := s.resolve(args[0])
	if !strings.HasPrefix(target, "/configs/") {
		target = "/configs/" + args[0]
	}
	if err := s.fsys.Mkdir(target, 0o755); err != nil {
		s.errorf("mkdir: %v", err)
	}
}

func (s *Shell) cmdRmdir(args []string) {
	if len(args) != 1 {
		s.errorf("usage: rmdir <name>")
		return
	}
	target := s.resolve(args[0])
	if !strings.HasPrefix(target, "/configs/") {
		target = "/configs/" + args[0]
	}
	if err := s.fsys.Remove(target); err != nil {
		s.errorf("rmdir: %v", err)
	}
}

// cmdActivate flips the activation gate of a configuration. The transition
// can run feature hooks, so a spinner covers the wait.
func (s *Shell) cmdActivate(args []string, desired bool) {
	dir := s.configDir(args)
	display := dir
	if display == "" {
		display = "root"
	}
	value := "0"
	verb := "Deactivating"
	if desired {
		value = "1"
		verb = "Activating"
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = fmt.Sprintf(" %s %s", verb, display)
	sp.Start()
	err := afero.WriteFile(s.fsys, dir+"/activate", []byte(value), 0o644)
	sp.Stop()

	if err != nil {
		s.errorf("activate: %v", err)
		return
	}
	fmt.Fprintf(s.out, "%s: activate = %s\n", display, value)
}

// configDir resolves an optional configuration argument: explicit name,
// current directory when inside a configuration, root otherwise.
func (s *Shell) configDir(args []string) string {
	if len(args) > 0 {
		if strings.HasPrefix(args[0], "/") {
			return s.resolve(args[0])
		}
		return "/configs/" + args[0]
	}
	if strings.HasPrefix(s.cwd, "/configs/") {
		parts := strings.SplitN(strings.TrimPrefix(s.cwd, "/configs/"), "/", 2)
		return "/configs/" + parts[0]
	}
	return ""
}

func (s *Shell) cmdConfigs() {
	cp := api.GetControlPlane()
	if cp == nil {
		s.errorf("control plane not initialized")
		return
	}
	configs, err := cp.ListConfigs()
	if err != nil {
		s.errorf("configs: %v", err)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "ACTIVE", "SELECTED FEATURES"})
	for _, c := range configs {
		active := ""
		if c.Active {
			active = text.FgGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{c.Name, active, strings.Join(c.Selected, ", ")})
	}
	t.Render()
}

func (s *Shell) cmdFeatures() {
	catalog := api.GetFeatureCatalog()
	if catalog == nil {
		s.errorf("feature catalog not initialized")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"FEATURE", "PARAMETER", "KIND", "ACCESS"})
	for _, f := range catalog.ListFeatures() {
		if f.Hidden {
			continue
		}
		if len(f.Params) == 0 {
			t.AppendRow(table.Row{f.Name, "", "", ""})
			continue
		}
		for i, p := range f.Params {
			name := ""
			if i == 0 {
				name = f.Name
			}
			access := "ro"
			if p.Writable {
				access = "rw"
			}
			t.AppendRow(table.Row{name, p.Name, p.Kind, access})
		}
	}
	t.Render()
}
