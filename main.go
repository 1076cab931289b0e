package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"apiary/app"
	"apiary/cmd"
	"apiary/config"
	"apiary/events"
	"apiary/log"
	"apiary/pod"
	"apiary/project"
	"apiary/statusengine"
	"apiary/tmux"
)

var version = "0.1.0"

func installHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "tmux not found. Install it with: brew install tmux"
	case "linux":
		return "tmux not found. Install it with your package manager, e.g.: sudo apt install tmux"
	case "windows":
		return "tmux not found. Apiary requires a tmux server reachable over WSL or a remote host."
	default:
		return "tmux not found. Install tmux and ensure it is on your PATH."
	}
}

func requireMultiplexer() error {
	if !tmux.IsAvailable() {
		fmt.Fprintln(os.Stderr, installHint())
		return fmt.Errorf("tmux: %w", tmux.ErrMultiplexerUnavailable)
	}
	return nil
}

func podStore() *pod.Store {
	state := config.LoadState()
	return pod.NewStore(state.PodsPath)
}

func projectStore() (*project.Store, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return project.NewStore(filepath.Join(dir, "projects.json")), nil
}

var rootCmd = &cobra.Command{
	Use:   "apiary",
	Short: "Apiary supervises concurrent coding-assistant sessions hosted in tmux.",
	RunE: func(c *cobra.Command, args []string) error {
		log.Initialize(false)
		defer log.Close()

		if err := requireMultiplexer(); err != nil {
			return err
		}

		cfg := config.LoadConfig()
		state := config.LoadState()
		store := pod.NewStore(state.PodsPath)

		tailer := events.NewTailer(filepath.Join(os.TempDir(), "events.ndjson"))
		mux := tmux.NewAdapter()
		notifier := statusengine.PlatformNotifier()

		engine := statusengine.NewEngine(store, mux, tailer, *cfg, notifier)
		return app.Run(engine, mux)
	},
}

var (
	createProjectFlag string
	createGroupFlag   string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new Pod running a fresh tmux session",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if err := requireMultiplexer(); err != nil {
			return err
		}
		name := args[0]

		workDir := "."
		if createProjectFlag != "" {
			store, err := projectStore()
			if err != nil {
				return err
			}
			proj, err := project.Resolve(store, cmd.MakeExecutor(), createProjectFlag)
			if err != nil {
				return err
			}
			workDir = proj.Path
		}

		mux := tmux.NewAdapter()
		session := name
		if err := mux.NewSession(session, workDir, ""); err != nil {
			return fmt.Errorf("failed to create tmux session: %w", err)
		}

		panes, err := mux.ListPanes(session)
		if err != nil {
			return fmt.Errorf("failed to locate the new session's pane: %w", err)
		}
		if len(panes) == 0 {
			return fmt.Errorf("session %q: %w", session, tmux.ErrPaneNotFound)
		}

		store := podStore()
		pods, err := store.Load()
		if err != nil {
			return err
		}
		if pod.FindByName(pods, name) != nil {
			return fmt.Errorf("pod %q: %w", name, pod.ErrDuplicatePodName)
		}
		now := time.Now().UTC()
		pods = append(pods, pod.Pod{
			Name:    name,
			Type:    pod.Solo,
			Session: session,
			Project: createProjectFlag,
			Group:   createGroupFlag,
			Status:  pod.StatusIdle,
			Members: []pod.Member{{
				Role:             "main",
				Status:           pod.StatusIdle,
				PaneID:           panes[0].PaneID,
				LastStatusChange: now,
			}},
			CreatedAt: now,
		})
		if err := store.Save(pods); err != nil {
			return err
		}
		fmt.Printf("created pod %q (session %q)\n", name, session)
		return nil
	},
}

var (
	adoptNameFlag  string
	adoptGroupFlag string
)

var adoptCmd = &cobra.Command{
	Use:   "adopt <session>",
	Short: "Adopt an already-running tmux session as a Pod",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if err := requireMultiplexer(); err != nil {
			return err
		}
		session := args[0]
		mux := tmux.NewAdapter()
		exists, err := mux.SessionExists(session)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("session %q: %w", session, tmux.ErrSessionNotFound)
		}

		panes, err := mux.ListPanes(session)
		if err != nil {
			return fmt.Errorf("session %q: %w", session, err)
		}
		if len(panes) == 0 {
			return fmt.Errorf("session %q: %w", session, tmux.ErrPaneNotFound)
		}

		name := adoptNameFlag
		if name == "" {
			name = session
		}

		store := podStore()
		pods, err := store.Load()
		if err != nil {
			return err
		}
		if pod.FindByName(pods, name) != nil {
			return fmt.Errorf("pod %q: %w", name, pod.ErrDuplicatePodName)
		}
		now := time.Now().UTC()
		members := make([]pod.Member, 0, len(panes))
		for _, p := range panes {
			members = append(members, pod.Member{
				Role:             "main",
				Status:           pod.StatusIdle,
				PaneID:           p.PaneID,
				LastStatusChange: now,
			})
		}
		pods = append(pods, pod.Pod{
			Name:      name,
			Type:      pod.Solo,
			Session:   session,
			Group:     adoptGroupFlag,
			Status:    pod.StatusIdle,
			Members:   members,
			CreatedAt: now,
		})
		if err := store.Save(pods); err != nil {
			return err
		}
		fmt.Printf("adopted session %q as pod %q\n", session, name)
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a Pod and kill its tmux session (only its panes if another Pod shares the session)",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		name := args[0]
		store := podStore()
		pods, err := store.Load()
		if err != nil {
			return err
		}

		kept := pods[:0]
		var dropped *pod.Pod
		for i := range pods {
			if pods[i].Name == name {
				p := pods[i]
				dropped = &p
				continue
			}
			kept = append(kept, pods[i])
		}
		if dropped == nil {
			return fmt.Errorf("no pod named %q", name)
		}

		if tmux.IsAvailable() {
			mux := tmux.NewAdapter()
			shared := false
			for i := range kept {
				if kept[i].Session == dropped.Session {
					shared = true
					break
				}
			}
			if shared {
				for _, member := range dropped.Members {
					_ = mux.KillPane(member.PaneID)
				}
			} else if exists, _ := mux.SessionExists(dropped.Session); exists {
				_ = mux.KillSession(dropped.Session)
			}
		}

		if err := store.Save(kept); err != nil {
			return err
		}
		fmt.Printf("dropped pod %q\n", name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known Pods",
	RunE: func(c *cobra.Command, args []string) error {
		store := podStore()
		pods, err := store.Load()
		if err != nil {
			return err
		}
		if len(pods) == 0 {
			fmt.Println("no pods")
			return nil
		}
		for _, p := range pods {
			fmt.Printf("%-24s %-10s %d members  %s\n", p.Name, p.Status, len(p.Members), pod.FormatWorkingTime(p.AccumulatedWorkSec))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize Pod statuses across the roster",
	RunE: func(c *cobra.Command, args []string) error {
		store := podStore()
		pods, err := store.Load()
		if err != nil {
			return err
		}
		counts := map[pod.PodStatus]int{}
		for _, p := range pods {
			counts[p.Status]++
		}
		for _, s := range []pod.PodStatus{pod.StatusPermission, pod.StatusError, pod.StatusWorking, pod.StatusIdle, pod.StatusDone, pod.StatusDead} {
			if counts[s] > 0 {
				fmt.Printf("%-12s %d\n", s, counts[s])
			}
		}
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the project registry",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(c *cobra.Command, args []string) error {
		store, err := projectStore()
		if err != nil {
			return err
		}
		projects, err := store.List()
		if err != nil {
			return err
		}
		for _, p := range projects {
			fmt.Printf("%-20s %s\n", p.Name, p.Path)
		}
		return nil
	},
}

var projectAddNameFlag string

var projectAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a project path",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		store, err := projectStore()
		if err != nil {
			return err
		}
		p, err := project.Resolve(store, cmd.MakeExecutor(), args[0])
		if err != nil {
			return err
		}
		if projectAddNameFlag != "" {
			p.Name = projectAddNameFlag
			if err := store.Register(p); err != nil {
				return err
			}
		}
		fmt.Printf("registered project %q at %s\n", p.Name, p.Path)
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a project by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		store, err := projectStore()
		if err != nil {
			return err
		}
		removed, err := store.Unregister(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no project named %q", args[0])
		}
		fmt.Printf("removed project %q\n", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(c *cobra.Command, args []string) {
		fmt.Printf("apiary version %s\n", version)
	},
}

func init() {
	createCmd.Flags().StringVar(&createProjectFlag, "project", "", "Project name or path to run the Pod in")
	createCmd.Flags().StringVar(&createGroupFlag, "group", "", "Group tag for this Pod")
	adoptCmd.Flags().StringVar(&adoptNameFlag, "name", "", "Pod name (defaults to the session name)")
	adoptCmd.Flags().StringVar(&adoptGroupFlag, "group", "", "Group tag for this Pod")
	projectAddCmd.Flags().StringVar(&projectAddNameFlag, "name", "", "Name to register the project under")

	projectCmd.AddCommand(projectListCmd, projectAddCmd, projectRemoveCmd)
	rootCmd.AddCommand(createCmd, adoptCmd, dropCmd, listCmd, statusCmd, projectCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
