package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/taskmanager"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTasks   = "tasks"
	viewPeople  = "people"
	viewDetail  = "detail"
	viewForm    = "form"
	viewHelp    = "help"
	viewConfirm = "confirm"
)

// sweepInterval is how often the running UI re-checks deadlines.
const sweepInterval = time.Minute

// statusFilters is the order the task pane filter cycles through; "" is all.
var statusFilters = []model.Status{"", model.StatusPending, model.StatusStarted, model.StatusCompleted, model.StatusOverdue}

type UI struct {
	manager *taskmanager.Manager
	gui     *gocui.Gui
	locale  string
	now     func() time.Time

	filter model.Status
	tasks  []model.Task
	people []model.Person

	selectedTask   int
	selectedPerson int
	focus          string
	// detailSource is the list pane whose selection the detail pane shows.
	detailSource string

	form       *formState
	formEditor *formEditor
	confirm    *confirmState
	helpActive bool
	status     string
}

type confirmState struct {
	message string
	action  func() error
}

type formEditor struct {
	ui *UI
}

func newUI(manager *taskmanager.Manager, locale string) *UI {
	ui := &UI{
		manager:      manager,
		locale:       locale,
		now:          time.Now,
		focus:        viewTasks,
		detailSource: viewTasks,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

// Run blocks until the user quits. The manager must already be loaded.
func Run(ctx context.Context, manager *taskmanager.Manager, locale string) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(manager, locale)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	ui.loadData()

	firstRun, err := manager.IsFirstRun(ctx)
	if err != nil {
		return err
	}
	if firstRun || manager.Company() == nil {
		ui.openOnboarding()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ui.sweepLoop(ctx, gui)

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

func (u *UI) sweepLoop(ctx context.Context, gui *gocui.Gui) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gui.Update(func(*gocui.Gui) error {
				u.refresh(ctx)
				return nil
			})
		}
	}
}

// refresh re-reads the store, which also sweeps, and redraws from it.
func (u *UI) refresh(ctx context.Context) {
	if n, err := u.manager.Refresh(ctx); err != nil {
		u.status = errorMessage(err)
	} else if n > 0 {
		u.status = fmt.Sprintf("%d atividade(s) marcada(s) como atrasada(s)", n)
	}
	u.loadData()
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	type binding struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.forceQuit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'a', u.addTask},
		{"", 'p', u.addPerson},
		{"", 'e', u.edit},
		{"", 'd', u.delete},
		{"", 'c', u.toggleStarted},
		{"", 'x', u.toggleCompleted},
		{"", 'f', u.cycleFilter},
		{"", 'o', u.editCompany},
		{"", 's', u.editSettings},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.focusTasks},
		{"", '2', u.focusPeople},
		{"", '3', u.focusDetail},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyCtrlJ, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewConfirm, 'y', u.confirmYes},
		{viewConfirm, 's', u.confirmYes},
		{viewConfirm, 'n', u.confirmNo},
		{viewConfirm, gocui.KeyEsc, u.confirmNo},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, name := range []string{viewTasks, viewPeople, viewDetail} {
		bindings = append(bindings,
			binding{name, gocui.KeyArrowDown, u.moveDown},
			binding{name, 'j', u.moveDown},
			binding{name, gocui.KeyArrowUp, u.moveUp},
			binding{name, 'k', u.moveUp},
		)
	}

	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewTasks, viewPeople} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX1 := l.leftWidth - 1
	rightX0 := min(leftX1+1, maxX-1)
	tasksY1 := bodyTop + l.tasksHeight - 1

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, leftX1, tasksY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorRed
	}
	tasksView.Title = u.tasksTitle()
	applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTasks(tasksView)

	peopleView, err := gui.SetView(viewPeople, 0, tasksY1+1, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		peopleView.Title = "2 Pessoas"
		peopleView.TitleColor = gocui.ColorGreen
	}
	applyViewStyle(peopleView, u.focus == viewPeople, true)
	u.renderPeople(peopleView)

	detailView, err := gui.SetView(viewDetail, rightX0, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "3 Detalhe"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, u.focus == viewDetail, false)
	u.renderDetail(detailView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.confirm != nil {
		if err := u.showConfirm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewConfirm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil

	return nil
}

type layout struct {
	leftWidth   int
	tasksHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	leftWidth := safeWidth / 2
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	tasksHeight := int(float64(safeHeight) * 0.6)
	if tasksHeight < 4 {
		tasksHeight = 4
	}
	if safeHeight-tasksHeight < 4 {
		tasksHeight = max(safeHeight-4, 4)
	}

	return layout{leftWidth: leftWidth, tasksHeight: tasksHeight}
}

// loadData refreshes both lists from the manager snapshot.
func (u *UI) loadData() {
	tasks := u.manager.TasksByStatus(u.filter)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Deadline.Before(tasks[j].Deadline)
	})
	people := u.manager.People()
	sort.SliceStable(people, func(i, j int) bool {
		return strings.ToLower(people[i].Name) < strings.ToLower(people[j].Name)
	})

	u.tasks = tasks
	u.people = people

	if u.selectedTask >= len(u.tasks) {
		u.selectedTask = max(len(u.tasks)-1, 0)
	}
	if u.selectedPerson >= len(u.people) {
		u.selectedPerson = max(len(u.people)-1, 0)
	}
}

func (u *UI) tasksTitle() string {
	label := "todas"
	if u.filter != "" {
		label = strings.ToLower(dateutil.StatusLabel(u.filter, u.locale))
	}
	return fmt.Sprintf("1 Atividades (%s)", label)
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	name := "sem empresa"
	if company := u.manager.Company(); company != nil {
		name = company.Name
	}
	summary := u.manager.TaskSummary()
	fmt.Fprintf(view, "%s | Hoje: %d | Atrasadas: %d | Pendentes: %d | Lembretes ativos: %d",
		name, summary.DueToday, summary.Overdue, summary.Pending, u.manager.RemindersActive())
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a atividade | p pessoa | e editar | d excluir | c iniciar | x concluir | f filtro | o empresa | s notificações")
	fmt.Fprintln(view, "tab painel | 1-3 painéis | j/k mover | r recarregar | ? ajuda | q sair")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()
	names := u.personNames()
	now := u.now()
	focused := u.focus == viewTasks
	for i, task := range u.tasks {
		fmt.Fprintf(view, "%s %s\n", selectionPrefix(i == u.selectedTask, focused), formatTaskLine(task, names[task.PersonID], now, u.locale))
	}
	if len(u.tasks) == 0 {
		fmt.Fprint(view, "  Nenhuma atividade")
	}
	if focused {
		view.SetCursor(0, max(min(u.selectedTask, len(u.tasks)-1), 0))
	}
}

func (u *UI) renderPeople(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewPeople
	for i, person := range u.people {
		fmt.Fprintf(view, "%s %s\n", selectionPrefix(i == u.selectedPerson, focused), formatPersonLine(person, len(u.manager.TasksForPerson(person.ID))))
	}
	if len(u.people) == 0 {
		fmt.Fprint(view, "  Nenhuma pessoa")
	}
	if focused {
		view.SetCursor(0, max(min(u.selectedPerson, len(u.people)-1), 0))
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	if u.detailSource == viewPeople {
		person := u.currentPerson()
		if person == nil {
			fmt.Fprint(view, "Nenhuma pessoa selecionada")
			return
		}
		fmt.Fprint(view, personDetail(*person, u.manager.TasksForPerson(person.ID), u.locale))
		return
	}

	task := u.currentTask()
	if task == nil {
		fmt.Fprint(view, "Nenhuma atividade selecionada")
		return
	}
	owner, _ := u.manager.Person(task.PersonID)
	fmt.Fprint(view, taskDetail(*task, owner, u.now(), u.locale))
}

func (u *UI) personNames() map[string]string {
	names := make(map[string]string, len(u.people))
	for _, person := range u.people {
		names[person.ID] = person.Name
	}
	return names
}

func (u *UI) currentTask() *model.Task {
	if u.selectedTask >= 0 && u.selectedTask < len(u.tasks) {
		return &u.tasks[u.selectedTask]
	}
	return nil
}

func (u *UI) currentPerson() *model.Person {
	if u.selectedPerson >= 0 && u.selectedPerson < len(u.people) {
		return &u.people[u.selectedPerson]
	}
	return nil
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewTasks:
		u.selectedTask = max(min(row, len(u.tasks)-1), 0)
	case viewPeople:
		u.selectedPerson = max(min(row, len(u.people)-1), 0)
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range []string{viewTasks, viewPeople, viewDetail} {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) showConfirm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/3)
	x0 := (maxX - width) / 2
	y0 := (maxY - 4) / 2

	view, err := gui.SetView(viewConfirm, x0, y0, x0+width, y0+3, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Confirmar"
		view.Wrap = true
		view.FrameColor = gocui.ColorYellow
	}
	view.Clear()
	fmt.Fprintf(view, "%s\n(s/y confirmar, n/esc cancelar)", u.confirm.message)
	_, _ = gui.SetCurrentView(viewConfirm)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Ajuda"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func helpText() string {
	return strings.Join([]string{
		"Navegação:",
		"  tab alterna painéis | 1 Atividades | 2 Pessoas | 3 Detalhe",
		"  j/k ou setas movem a seleção | clique seleciona",
		"",
		"Ações:",
		"  a nova atividade | p nova pessoa | e editar | d excluir",
		"  c iniciar/pausar | x concluir/reabrir | f filtrar por status",
		"  o dados da empresa | s notificações | r recarregar",
		"",
		"Formulários:",
		"  tab/setas trocam de campo | espaço/←→ alternam opções",
		"  enter salva | esc cancela | ctrl+u limpa o campo",
		"",
		"  ? ajuda | esc/q fecha a ajuda | q sair",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
