package main

import (
	"image/color"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/fxrelay/fx"
)

// NewEffectsUI builds a panel on the right edge with one row per emitter and
// a row of broadcast commands. Buttons go through the rig's dispatcher.
func NewEffectsUI(g *Game) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	btnImg := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}),
		Hover:   imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x55, A: 255}),
		Pressed: imageui.NewNineSliceColor(color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 255}),
	}

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	command := func(name string, action fx.Action) func(*widget.ButtonClickedEventArgs) {
		return func(*widget.ButtonClickedEventArgs) {
			fxs := g.effects()
			if fxs == nil {
				return
			}
			if err := fxs.Dispatcher.Command(name, action); err != nil {
				g.setStatus(err.Error())
			}
		}
	}
	button := func(label string, handler func(*widget.ButtonClickedEventArgs)) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(btnImg),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(52, 18)),
			widget.ButtonOpts.ClickedHandler(handler),
		)
	}
	row := func() *widget.Container {
		return widget.NewContainer(widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(4),
		)))
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 12, Bottom: 12, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	panel.AddChild(widget.NewText(widget.TextOpts.Text("Effects", &face, white)))

	actions := []fx.Action{fx.ActionPlay, fx.ActionPause, fx.ActionStop, fx.ActionClear}
	if fxs := g.effects(); fxs != nil {
		for _, name := range fxs.Dispatcher.Names() {
			r := row()
			r.AddChild(widget.NewText(
				widget.TextOpts.Text(name, &face, white),
				widget.TextOpts.WidgetOpts(widget.WidgetOpts.MinSize(70, 0)),
			))
			for _, a := range actions {
				r.AddChild(button(a.String(), command(name, a)))
			}
			panel.AddChild(r)
		}
	}

	all := row()
	all.AddChild(button("Play all", command("", fx.ActionPlay)))
	all.AddChild(button("Stop all", command("", fx.ActionStop)))
	all.AddChild(button("Clear all", command("", fx.ActionClear)))
	panel.AddChild(all)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}
