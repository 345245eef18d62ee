package tui

import (
	"context"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{kind: formTask, fields: buildTaskFields(nil, u.people, u.now(), u.locale)}
	return nil
}

func (u *UI) addPerson(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{kind: formPerson, fields: buildPersonFields(nil)}
	return nil
}

func (u *UI) edit(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewPeople || (u.focus == viewDetail && u.detailSource == viewPeople) {
		person := u.currentPerson()
		if person == nil {
			return nil
		}
		u.form = &formState{kind: formPerson, id: person.ID, fields: buildPersonFields(person)}
		return nil
	}

	task := u.currentTask()
	if task == nil {
		return nil
	}
	u.form = &formState{kind: formTask, id: task.ID, fields: buildTaskFields(task, u.people, u.now(), u.locale)}
	return nil
}

func (u *UI) editCompany(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{kind: formCompany, fields: buildCompanyFields(u.manager.Company())}
	return nil
}

func (u *UI) editSettings(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{kind: formSettings, fields: buildSettingsFields(u.manager.NotificationConfig())}
	return nil
}

func (u *UI) openOnboarding() {
	u.form = &formState{kind: formCompany, onboarding: true, fields: buildCompanyFields(u.manager.Company())}
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(64, maxX/2)
	height := min(len(u.form.fields)+3, max(8, maxY-2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.title()
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitForm saves the open form. Validation failures keep the form open and
// surface in the status line.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if err := u.saveForm(context.Background()); err != nil {
		u.status = errorMessage(err)
		return nil
	}

	u.form = nil
	u.status = ""
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(u.focus)
	}
	u.loadData()
	return nil
}

func (u *UI) saveForm(ctx context.Context) error {
	form := u.form
	switch form.kind {
	case formTask:
		task, err := parseTaskFields(form.fields, u.now())
		if err != nil {
			return err
		}
		if form.id == "" {
			_, err = u.manager.AddTask(ctx, task)
			return err
		}
		_, err = u.manager.UpdateTask(ctx, form.id, taskUpdate(task))
		return err
	case formPerson:
		person := parsePersonFields(form.fields)
		if form.id == "" {
			_, err := u.manager.AddPerson(ctx, person)
			return err
		}
		_, err := u.manager.UpdatePerson(ctx, form.id, personUpdate(person))
		return err
	case formCompany:
		company := parseCompanyFields(form.fields)
		if form.onboarding {
			_, err := u.manager.CompleteOnboarding(ctx, company)
			return err
		}
		_, err := u.manager.SaveCompany(ctx, company)
		return err
	case formSettings:
		return u.manager.UpdateNotificationConfig(ctx, parseSettingsFields(form.fields))
	default:
		return fmt.Errorf("unknown form kind %d", form.kind)
	}
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil && u.form.onboarding {
		u.status = "Cadastre a empresa para continuar (ctrl+c sai)"
		return nil
	}
	u.form = nil
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.display())
	}
	current := u.form.fields[u.form.index]
	label := current.Label + ": "
	cursorX := len([]rune(label)) + len([]rune(current.display())) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if field.Options != nil {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleOption(field.Options, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleOption(field.Options, field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}
