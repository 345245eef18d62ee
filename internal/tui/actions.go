package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}

	switch u.focus {
	case viewTasks:
		u.focus = viewPeople
	case viewPeople:
		u.focus = viewDetail
	default:
		u.focus = viewTasks
	}
	return u.setFocus(gui, u.focus)
}

func (u *UI) focusTasks(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTasks)
}

func (u *UI) focusPeople(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewPeople)
}

func (u *UI) focusDetail(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDetail)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if name == viewTasks || name == viewPeople {
		u.detailSource = name
	}
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	u.loadData()
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask < len(u.tasks)-1 {
			u.selectedTask++
		}
	case viewPeople:
		if u.selectedPerson < len(u.people)-1 {
			u.selectedPerson++
		}
	case viewDetail:
		return u.scrollDown(gui, view)
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask > 0 {
			u.selectedTask--
		}
	case viewPeople:
		if u.selectedPerson > 0 {
			u.selectedPerson--
		}
	case viewDetail:
		return u.scrollUp(gui, view)
	}
	return nil
}

// reload re-reads persisted state, which also sweeps overdue tasks.
func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if err := u.manager.Load(context.Background()); err != nil {
		u.status = errorMessage(err)
		return nil
	}
	u.status = "Dados recarregados"
	u.loadData()
	return nil
}

func (u *UI) cycleFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	index := 0
	for i, status := range statusFilters {
		if status == u.filter {
			index = i
			break
		}
	}
	u.filter = statusFilters[(index+1)%len(statusFilters)]
	u.selectedTask = 0
	u.loadData()
	return nil
}

func (u *UI) toggleStarted(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.currentTask()
	if task == nil {
		return nil
	}
	next := model.StatusStarted
	if task.Status == model.StatusStarted {
		next = model.StatusPending
	}
	return u.applyStatus(task.ID, next)
}

func (u *UI) toggleCompleted(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.currentTask()
	if task == nil {
		return nil
	}
	next := model.StatusCompleted
	if task.Status == model.StatusCompleted {
		next = model.StatusPending
	}
	return u.applyStatus(task.ID, next)
}

func (u *UI) applyStatus(id string, status model.Status) error {
	if _, err := u.manager.SetStatus(context.Background(), id, status); err != nil {
		u.status = errorMessage(err)
		return nil
	}
	u.status = ""
	u.loadData()
	return nil
}

func (u *UI) delete(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewPeople || (u.focus == viewDetail && u.detailSource == viewPeople) {
		return u.deletePerson(gui)
	}
	return u.deleteTask(gui)
}

func (u *UI) deleteTask(_ *gocui.Gui) error {
	task := u.currentTask()
	if task == nil {
		return nil
	}
	id := task.ID
	u.askConfirm(fmt.Sprintf("Excluir a atividade %q?", task.Title), func() error {
		return u.manager.DeleteTask(context.Background(), id)
	})
	return nil
}

func (u *UI) deletePerson(_ *gocui.Gui) error {
	person := u.currentPerson()
	if person == nil {
		return nil
	}
	id, name := person.ID, person.Name
	owned := len(u.manager.TasksForPerson(id))
	if owned == 0 {
		u.askConfirm(fmt.Sprintf("Excluir %s?", name), func() error {
			return u.manager.DeletePerson(context.Background(), id)
		})
		return nil
	}
	u.status = model.ErrPersonHasTasks.Error()
	u.askConfirm(fmt.Sprintf("%s possui %d atividade(s). Excluir a pessoa e as atividades?", name, owned), func() error {
		_, err := u.manager.PurgePerson(context.Background(), id)
		return err
	})
	return nil
}

func (u *UI) askConfirm(message string, action func() error) {
	u.confirm = &confirmState{message: message, action: action}
}

func (u *UI) confirmYes(gui *gocui.Gui, _ *gocui.View) error {
	if u.confirm == nil {
		return nil
	}
	action := u.confirm.action
	u.closeConfirm(gui)
	if err := action(); err != nil {
		u.status = errorMessage(err)
		u.loadData()
		return nil
	}
	u.status = ""
	u.loadData()
	return nil
}

func (u *UI) confirmNo(gui *gocui.Gui, _ *gocui.View) error {
	u.closeConfirm(gui)
	return nil
}

func (u *UI) closeConfirm(gui *gocui.Gui) {
	u.confirm = nil
	if gui != nil {
		_ = gui.DeleteView(viewConfirm)
		_, _ = gui.SetCurrentView(u.focus)
	}
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || u.confirm != nil {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive || u.confirm != nil
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	return gocui.ErrQuit
}

// errorMessage renders err for the status line.
func errorMessage(err error) string {
	switch {
	case model.IsValidation(err):
		return "Erro: " + err.Error()
	case errors.Is(err, model.ErrNotFound):
		return "Registro não encontrado"
	default:
		return "Não foi possível salvar os dados: " + err.Error()
	}
}

func (u *UI) forceQuit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}
