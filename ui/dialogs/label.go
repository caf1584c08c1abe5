// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"shape-annotator/internal/app"
)

// LabelDialog asks for an annotation label. Exactly one of the save,
// cancel or delete callbacks runs per dialog, closing the window counts as
// cancel.
type LabelDialog struct {
	req    app.LabelRequest
	window fyne.Window

	entry *widget.Entry
	dlg   dialog.Dialog
	done  bool

	onSave   func(label string)
	onCancel func()
	onDelete func()
}

// NewLabelDialog creates a label dialog for req. onDelete may be nil.
func NewLabelDialog(req app.LabelRequest, window fyne.Window,
	onSave func(label string), onCancel func(), onDelete func()) *LabelDialog {
	d := &LabelDialog{
		req:      req,
		window:   window,
		onSave:   onSave,
		onCancel: onCancel,
		onDelete: onDelete,
	}
	d.entry = widget.NewEntry()
	d.entry.SetText(req.Current)
	if req.Suggestion != "" {
		d.entry.SetPlaceHolder(req.Suggestion)
	} else {
		d.entry.SetPlaceHolder("Label")
	}
	d.entry.OnSubmitted = func(string) { d.Save() }
	return d
}

// Title returns the dialog title.
func (d *LabelDialog) Title() string {
	if d.req.New {
		return fmt.Sprintf("Label new %s", d.req.Kind)
	}
	return fmt.Sprintf("Edit %s label", d.req.Kind)
}

// Show displays the dialog.
func (d *LabelDialog) Show() {
	form := container.NewVBox(widget.NewLabel("Label:"), d.entry)
	if d.req.Suggestion != "" && d.req.Suggestion != d.req.Current {
		useBtn := widget.NewButton("Use \""+d.req.Suggestion+"\"", func() {
			d.entry.SetText(d.req.Suggestion)
		})
		form.Add(container.NewHBox(widget.NewLabel("Suggested:"), useBtn))
	}

	saveBtn := widget.NewButton("Save", d.Save)
	saveBtn.Importance = widget.HighImportance
	cancelBtn := widget.NewButton("Cancel", d.Cancel)

	buttons := container.NewHBox(layout.NewSpacer(), cancelBtn, saveBtn)
	if d.onDelete != nil && !d.req.New {
		deleteBtn := widget.NewButton("Delete", func() {
			dialog.ShowConfirm("Delete Annotation",
				"Delete this annotation?",
				func(confirmed bool) {
					if confirmed {
						d.Delete()
					}
				}, d.window)
		})
		deleteBtn.Importance = widget.DangerImportance
		buttons.Objects = append([]fyne.CanvasObject{deleteBtn}, buttons.Objects...)
	}

	d.dlg = dialog.NewCustomWithoutButtons(d.Title(),
		container.NewBorder(nil, buttons, nil, nil, form), d.window)
	d.dlg.SetOnClosed(d.Cancel)
	d.dlg.Resize(fyne.NewSize(360, 180))
	d.dlg.Show()
	d.window.Canvas().Focus(d.entry)
}

// Text returns the current entry text.
func (d *LabelDialog) Text() string {
	return d.entry.Text
}

// SetText replaces the entry text.
func (d *LabelDialog) SetText(s string) {
	d.entry.SetText(s)
}

// Save confirms the entered label.
func (d *LabelDialog) Save() {
	if !d.finish() {
		return
	}
	if d.onSave != nil {
		d.onSave(d.entry.Text)
	}
}

// Cancel dismisses the dialog without a label.
func (d *LabelDialog) Cancel() {
	if !d.finish() {
		return
	}
	if d.onCancel != nil {
		d.onCancel()
	}
}

// Delete removes the annotation being labeled.
func (d *LabelDialog) Delete() {
	if !d.finish() {
		return
	}
	if d.onDelete != nil {
		d.onDelete()
	}
}

func (d *LabelDialog) finish() bool {
	if d.done {
		return false
	}
	d.done = true
	if d.dlg != nil {
		d.dlg.Hide()
	}
	return true
}
