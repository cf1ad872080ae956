package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red
)

// hostState is the demo stand-in for the management sim that owns the
// team counters. The engine never mutates these directly; it returns
// StateDeltas and hostState applies them.
type hostState struct {
	day          int
	date         time.Time
	morale       int
	hype         int
	fanbase      int
	sponsorTrust int
	winStreak    int
	lossStreak   int
	rivalry      narrative.Rivalry
	players      []narrative.PlayerRef
	lastMatch    *narrative.MatchResult
}

func newHostState() *hostState {
	return &hostState{
		day:          1,
		date:         time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC),
		morale:       60,
		hype:         40,
		fanbase:      5000,
		sponsorTrust: 55,
		rivalry:      narrative.Rivalry{TeamID: "ravens", TeamName: "Redline Ravens", Intensity: 55},
		players: []narrative.PlayerRef{
			{ID: "p1", Name: "Vex", Personality: "volatile", Morale: 62},
			{ID: "p2", Name: "Mori", Personality: "stoic", Morale: 70},
			{ID: "p3", Name: "Saturn", Personality: "showman", Morale: 55},
			{ID: "p4", Name: "Tidal", Personality: "anchor", Morale: 66},
		},
	}
}

func (h *hostState) snapshot() *narrative.Snapshot {
	return &narrative.Snapshot{
		Date:         h.date,
		TeamID:       "breakpoint",
		TeamName:     "Breakpoint Esports",
		WinStreak:    h.winStreak,
		LossStreak:   h.lossStreak,
		TeamMorale:   h.morale,
		Hype:         h.hype,
		Fanbase:      h.fanbase,
		SponsorTrust: h.sponsorTrust,
		Bracket:      narrative.BracketUpper,
		Rivalries:    []narrative.Rivalry{h.rivalry},
		Players:      append([]narrative.PlayerRef(nil), h.players...),
		LastMatch:    h.lastMatch,
	}
}

func (h *hostState) apply(delta *narrative.StateDelta) {
	if delta.IsEmpty() {
		return
	}
	h.morale += delta.TeamMorale
	h.hype += delta.Hype
	h.fanbase += delta.Fanbase
	h.sponsorTrust += delta.SponsorTrust
	for id, d := range delta.PlayerMorale {
		for i := range h.players {
			if h.players[i].ID == id {
				h.players[i].Morale += d
			}
		}
	}
	for id, d := range delta.Rivalry {
		if h.rivalry.TeamID == id {
			h.rivalry.Intensity += d
		}
	}
}

// ConsoleUI is the BubbleTea model that runs the demo loop.
type ConsoleUI struct {
	eng    *engine.Engine
	roller dice.Roller
	host   *hostState

	vp     viewport.Model
	log    []string
	recap  string
	ready  bool
	width  int
	height int
	dirty  bool
}

func newConsoleUI(eng *engine.Engine, roller dice.Roller) *ConsoleUI {
	ui := &ConsoleUI{
		eng:    eng,
		roller: roller,
		host:   newHostState(),
	}
	ui.logf("%s", titleStyle.Render("Breakpoint Esports — season console"))
	ui.logf("%s", statusStyle.Render("n: next day   1-3: choose   s: skip interview   c: copy recap   q: quit"))
	return ui
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return nil
}

func (ui *ConsoleUI) logf(format string, args ...any) {
	ui.log = append(ui.log, fmt.Sprintf(format, args...))
	if ui.ready {
		ui.vp.SetContent(ui.content())
		ui.vp.GotoBottom()
	}
}

func (ui *ConsoleUI) content() string {
	return wordwrap.String(strings.Join(ui.log, "\n"), ui.width-2)
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		if !ui.ready {
			ui.vp = viewport.New(msg.Width, msg.Height-4)
			ui.ready = true
		} else {
			ui.vp.Width = msg.Width
			ui.vp.Height = msg.Height - 4
		}
		ui.vp.SetContent(ui.content())
		ui.vp.GotoBottom()
		return ui, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return ui, tea.Quit
		case "n":
			ui.advanceDay()
		case "1", "2", "3":
			ui.choose(int(msg.String()[0] - '1'))
		case "s":
			if p := ui.eng.ShiftInterviewQueue(); p != nil {
				ui.logf(statusStyle.Render("(skipped interview: %s)"), p.TemplateID)
			}
		case "c":
			if err := clipboard.WriteAll(ui.recapText()); err != nil {
				ui.logf(errorStyle.Render("clipboard: %v"), err)
			} else {
				ui.logf("%s", statusStyle.Render("(recap copied to clipboard)"))
			}
		}
	}

	var cmd tea.Cmd
	ui.vp, cmd = ui.vp.Update(msg)
	return ui, cmd
}

// advanceDay runs one day of the demo sim: play a match every third
// day, advance the narrative engine, then request press content.
func (ui *ConsoleUI) advanceDay() {
	if ui.eng.GetActiveMajorEvent() != nil || len(ui.eng.GetPendingInterviewQueue()) > 0 {
		ui.logf("%s", errorStyle.Render("Resolve the open event or interview first."))
		return
	}

	ui.host.day++
	ui.host.date = ui.host.date.AddDate(0, 0, 1)
	ui.dirty = true

	matchDay := ui.host.day%3 == 0
	if matchDay {
		ui.playMatch()
	}

	snap := ui.host.snapshot()
	ui.logf("\n%s", titleStyle.Render(fmt.Sprintf("— Day %d (%s) —", ui.host.day, ui.host.date.Format("Jan 2"))))

	result, err := ui.eng.AdvanceNarrativeState(snap)
	if err != nil {
		ui.logf(errorStyle.Render("engine: %v"), err)
		return
	}
	ui.host.apply(result.Delta)

	for _, toast := range result.DramaToasts {
		ui.logf("%s %s", toastStyle.Render("◆ "+narrative.Headline(string(toast.Category))+":"), toast.Text)
	}

	if matchDay {
		subject := ui.host.players[ui.roller.Intn(len(ui.host.players))]
		reqs := []interview.Request{
			{Context: interview.ContextPostMatch, Outcome: snap.Outcome(), SubjectType: interview.SubjectManager},
			{Context: interview.ContextPostMatch, Outcome: snap.Outcome(), SubjectType: interview.SubjectPlayer, SubjectID: subject.ID},
		}
		for _, req := range reqs {
			ui.eng.SelectInterviews(req, snap)
		}
	}

	ui.showNext()
}

func (ui *ConsoleUI) playMatch() {
	won := ui.roller.Percent() <= 50
	rivalryMatch := ui.roller.Percent() <= 30
	opponent := narrative.MatchResult{OpponentID: "kraken", OpponentName: "Abyss Kraken", Won: won, RivalryMatch: rivalryMatch}
	if rivalryMatch {
		opponent.OpponentID = ui.host.rivalry.TeamID
		opponent.OpponentName = ui.host.rivalry.TeamName
	}
	ui.host.lastMatch = &opponent
	if won {
		ui.host.winStreak++
		ui.host.lossStreak = 0
		ui.logf(toastStyle.Render("WIN vs %s"), opponent.OpponentName)
	} else {
		ui.host.lossStreak++
		ui.host.winStreak = 0
		ui.logf(errorStyle.Render("LOSS vs %s"), opponent.OpponentName)
	}
}

// showNext surfaces the next blocking item: a major drama event first,
// then the front of the interview queue.
func (ui *ConsoleUI) showNext() {
	if ev := ui.eng.GetActiveMajorEvent(); ev != nil {
		tmpl, _ := ui.eng.DramaTemplate(ev.TemplateID)
		ui.logf("\n%s", eventStyle.Render("■ DRAMA: "+narrative.Headline(string(ev.Category))))
		ui.logf("%s", ev.Text)
		if tmpl != nil {
			for i, ch := range tmpl.Choices {
				ui.logf(choiceStyle.Render("  %d) %s"), i+1, ch.Label)
			}
		}
		return
	}
	if queue := ui.eng.GetPendingInterviewQueue(); len(queue) > 0 {
		p := queue[0]
		ui.logf("\n%s", promptStyle.Render(fmt.Sprintf("🎤 %s (%s)", p.Prompt, p.SubjectType)))
		for i, opt := range p.Options {
			ui.logf(choiceStyle.Render("  %d) [%s] %s"), i+1, opt.Tone, opt.Label)
		}
	}
}

func (ui *ConsoleUI) choose(idx int) {
	snap := ui.host.snapshot()

	if ev := ui.eng.GetActiveMajorEvent(); ev != nil {
		tmpl, ok := ui.eng.DramaTemplate(ev.TemplateID)
		if !ok || idx >= len(tmpl.Choices) {
			return
		}
		res, err := ui.eng.ResolveDramaEvent(ev.ID, tmpl.Choices[idx].ID, snap)
		if err != nil {
			ui.logf(errorStyle.Render("%v"), err)
			return
		}
		ui.host.apply(res.Delta)
		ui.recap = ev.Text
		ui.logf(statusStyle.Render("Resolved: %s"), tmpl.Choices[idx].Label)
		if res.ChainedEvent != nil {
			ui.logf("%s", eventStyle.Render("…and that stirred up more drama."))
		}
		ui.dirty = true
		ui.showNext()
		return
	}

	if queue := ui.eng.GetPendingInterviewQueue(); len(queue) > 0 {
		p := queue[0]
		if idx >= len(p.Options) {
			return
		}
		opt := p.Options[idx]
		res, err := ui.eng.ResolveInterview(p, idx, snap)
		if err != nil {
			ui.logf(errorStyle.Render("%v"), err)
			return
		}
		ui.host.apply(res.Delta)
		ui.recap = fmt.Sprintf("%s — %q", p.Prompt, opt.Quote)
		ui.logf("%s %s", statusStyle.Render("You said:"), opt.Quote)
		if res.ChainedEvent != nil {
			ui.logf("%s", eventStyle.Render("The quote is already making rounds…"))
		}
		ui.dirty = true
		ui.showNext()
	}
}

func (ui *ConsoleUI) recapText() string {
	var sb strings.Builder
	sb.WriteString(ui.recap)
	sb.WriteString("\n\nRecent events:\n")
	for _, ev := range ui.eng.GetEventHistory(5) {
		sb.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", ev.Category, ev.Text, ev.Status))
	}
	return sb.String()
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "loading..."
	}
	status := fmt.Sprintf("Day %d  morale %d  hype %d  fans %d  sponsor %d  rivalry %d",
		ui.host.day, ui.host.morale, ui.host.hype, ui.host.fanbase, ui.host.sponsorTrust, ui.host.rivalry.Intensity)
	return fmt.Sprintf("%s\n%s\n%s", ui.vp.View(), strings.Repeat("─", max(ui.width, 1)), statusStyle.Render(status))
}
