package tui

import (
	"context"
	"fmt"

	"github.com/bw-isys-53203/Module3/internal/domain"
	httpapi "github.com/bw-isys-53203/Module3/internal/http"
	"github.com/bw-isys-53203/Module3/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend 单日视图需要的操作，由 client.Client 实现
type Backend interface {
	State(ctx context.Context) (*httpapi.StateDTO, error)
	SetDate(ctx context.Context, req httpapi.SetDateRequest) (*httpapi.StateDTO, error)
	SelectSubject(ctx context.Context, subject string) (*httpapi.StateDTO, error)
	Toggle(ctx context.Context, subject string, hour int, date string) (*httpapi.IntervalsDTO, error)
	Radar(ctx context.Context, date string) (*service.RadarView, error)
}

type loadedMsg struct {
	state  *httpapi.StateDTO
	radar  *service.RadarView
	status string
}

type errMsg struct{ err error }

// DayModel 交互式单日视图
// ←/→ 小时，↑/↓ 日期，tab 切换 subject，空格 切换睡眠状态，t 今天，r 刷新，q 退出
type DayModel struct {
	ctx     context.Context
	backend Backend

	state  *httpapi.StateDTO
	radar  *service.RadarView
	cursor int
	status string
	err    error
	width  int
}

func NewDayModel(ctx context.Context, backend Backend) DayModel {
	return DayModel{ctx: ctx, backend: backend}
}

func (m DayModel) Init() tea.Cmd {
	return m.reload(m.backend.State, "")
}

func (m DayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.cursor = (m.cursor + domain.HoursPerDay - 1) % domain.HoursPerDay
		case "right", "l":
			m.cursor = (m.cursor + 1) % domain.HoursPerDay
		case "up", "k":
			return m, m.shiftDate(-1)
		case "down", "j":
			return m, m.shiftDate(1)
		case "t":
			return m, m.reload(func(ctx context.Context) (*httpapi.StateDTO, error) {
				return m.backend.SetDate(ctx, httpapi.SetDateRequest{Today: true})
			}, "")
		case "tab":
			return m, m.nextSubject()
		case " ", "space", "enter":
			return m, m.toggle()
		case "r":
			return m, m.reload(m.backend.State, "refreshed")
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case loadedMsg:
		m.state = msg.state
		m.radar = msg.radar
		m.status = msg.status
		m.err = nil
	case errMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m DayModel) View() string {
	if m.state == nil {
		if m.err != nil {
			return errorStyle.Render("error: "+m.err.Error()) + "\n"
		}
		return "Loading..."
	}

	parts := []string{
		RenderState(m.state.Date, m.state.SelectedSubject, m.state.Subjects),
		"",
		boxStyle.Render(RenderRadar(m.radar, m.cursor)),
		fmt.Sprintf("hour %s", domain.HourLabel(m.cursor)),
	}
	if m.status != "" {
		parts = append(parts, dimStyle.Render(m.status))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("error: "+m.err.Error()))
	}
	parts = append(parts, dimStyle.Render("←/→ hour • ↑/↓ day • tab subject • space toggle • t today • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// Cursor 当前光标所在小时
func (m DayModel) Cursor() int { return m.cursor }

// reload 执行 op 后按返回的日期重新加载单日视图
func (m DayModel) reload(op func(context.Context) (*httpapi.StateDTO, error), status string) tea.Cmd {
	ctx := m.ctx
	backend := m.backend
	return func() tea.Msg {
		st, err := op(ctx)
		if err != nil {
			return errMsg{err}
		}
		radar, err := backend.Radar(ctx, st.Date)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{state: st, radar: radar, status: status}
	}
}

func (m DayModel) shiftDate(days int) tea.Cmd {
	return m.reload(func(ctx context.Context) (*httpapi.StateDTO, error) {
		return m.backend.SetDate(ctx, httpapi.SetDateRequest{Offset: days})
	}, "")
}

func (m DayModel) nextSubject() tea.Cmd {
	if m.state == nil || len(m.state.Subjects) == 0 {
		return nil
	}
	next := m.state.Subjects[0].ID
	for i, s := range m.state.Subjects {
		if s.ID == m.state.SelectedSubject {
			next = m.state.Subjects[(i+1)%len(m.state.Subjects)].ID
			break
		}
	}
	return m.reload(func(ctx context.Context) (*httpapi.StateDTO, error) {
		return m.backend.SelectSubject(ctx, string(next))
	}, "")
}

func (m DayModel) toggle() tea.Cmd {
	if m.state == nil {
		return nil
	}
	ctx := m.ctx
	backend := m.backend
	subject := string(m.state.SelectedSubject)
	date := m.state.Date
	hour := m.cursor
	return func() tea.Msg {
		dto, err := backend.Toggle(ctx, subject, hour, date)
		if err != nil {
			return errMsg{err}
		}
		st, err := backend.State(ctx)
		if err != nil {
			return errMsg{err}
		}
		radar, err := backend.Radar(ctx, st.Date)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{
			state:  st,
			radar:  radar,
			status: fmt.Sprintf("%s %s → %s", subject, dto.Date, dto.Intervals),
		}
	}
}
