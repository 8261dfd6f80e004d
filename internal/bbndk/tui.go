package bbndk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type logInfo struct {
	arch    string
	path    string
	content string
}

// collectLogs reads every per-architecture build log under LogDir. When a
// specific arch is requested only that log is loaded.
func collectLogs(arch string) []logInfo {
	entries, err := os.ReadDir(LogDir)
	if err != nil {
		return nil
	}

	var logs []logInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".log")
		if arch != "" && name != arch {
			continue
		}
		path := filepath.Join(LogDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		logs = append(logs, logInfo{arch: name, path: path, content: string(data)})
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].arch < logs[j].arch })
	return logs
}

// runLogTUI shows the per-architecture build logs in a scrollable viewer.
// TAB cycles architectures, arrow keys and PgUp/PgDn scroll, q quits.
// Logs are re-read once a second so a running build can be followed live.
func runLogTUI(arch string) int {
	logs := collectLogs(arch)
	if len(logs) == 0 {
		fmt.Fprintf(os.Stderr, "No build logs found in %s\n", LogDir)
		return 1
	}

	app := tview.NewApplication()
	activeIdx := 0

	header := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignLeft)
	header.SetBorder(true)
	header.SetTitle("bbndk Build Log Viewer")

	logView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetScrollable(true)
	logView.SetBorder(true)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetTextAlign(tview.AlignLeft)
	footer.SetBorder(true)
	footer.SetText("[yellow]TAB[white] next arch  [yellow]↑/↓ PgUp/PgDn[white] scroll  [yellow]g/G[white] top/bottom  [yellow]q[white] quit")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 3, 0, false).
		AddItem(logView, 0, 1, true).
		AddItem(footer, 3, 0, false)

	show := func() {
		l := logs[activeIdx]
		header.SetText(fmt.Sprintf("[yellow]%s[white]  %s  (%d/%d)", l.arch, l.path, activeIdx+1, len(logs)))
		logView.SetText(tview.Escape(l.content))
		logView.ScrollToEnd()
	}
	show()

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlQ, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyTab:
			activeIdx = (activeIdx + 1) % len(logs)
			show()
			return nil
		}
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		case 'g':
			logView.ScrollToBeginning()
			return nil
		case 'G':
			logView.ScrollToEnd()
			return nil
		}
		return event
	})

	// Refresh loop: a build still running keeps appending to the log.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fresh := collectLogs(arch)
				if len(fresh) == 0 {
					continue
				}
				app.QueueUpdateDraw(func() {
					logs = fresh
					if activeIdx >= len(logs) {
						activeIdx = 0
					}
					show()
				})
			case <-stop:
				return
			}
		}
	}()

	if err := app.SetRoot(flex, true).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}
