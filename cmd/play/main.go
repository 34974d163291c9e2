// Command play runs a local hot-seat game in the terminal. Both marks are
// played from the same keyboard against the same session type the server
// stores, history stepping included.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
)

const (
	boardLeft = 2
	boardTop  = 1
)

func main() {
	size := flag.Int("size", entity.MinBoardSize, "board side length")
	winLength := flag.Int("win", entity.MinWinLength, "marks in a row needed to win")
	flag.Parse()

	if err := run(*size, *winLength); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(size, winLength int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	if err = screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	rules := entity.Rules{Size: size, WinLength: winLength, HighlightWins: true}

	ui := &playUI{
		screen:  screen,
		session: entity.NewSession("local", rules),
	}
	ui.loop()

	return nil
}

type playUI struct {
	screen  tcell.Screen
	session *entity.Session

	cursor int
	notice string
}

func (that *playUI) loop() {
	for {
		that.draw()

		switch event := that.screen.PollEvent().(type) {
		case *tcell.EventResize:
			that.screen.Sync()
		case *tcell.EventKey:
			if that.handleKey(event) {
				return
			}
		}
	}
}

// handleKey - reports true when the player asked to quit.
func (that *playUI) handleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		that.moveCursor(-1, 0)
	case tcell.KeyDown:
		that.moveCursor(1, 0)
	case tcell.KeyLeft:
		that.moveCursor(0, -1)
	case tcell.KeyRight:
		that.moveCursor(0, 1)
	case tcell.KeyEnter:
		that.place()
	case tcell.KeyRune:
		return that.handleRune(event.Rune())
	}

	return false
}

func (that *playUI) handleRune(key rune) bool {
	switch key {
	case 'q':
		return true
	case ' ':
		that.place()
	case 'z':
		that.jumpTo(that.session.Current - 1)
	case 'x':
		that.jumpTo(that.session.Current + 1)
	case '0':
		that.jumpTo(0)
	case 'e':
		that.jumpTo(that.session.LastIndex())
	case 'r':
		that.notice = ""
		that.session.Reset()
	case '[':
		that.resize(that.session.Rules.Size - 1)
	case ']':
		that.resize(that.session.Rules.Size + 1)
	case '-':
		that.notice = ""
		that.session.SetWinLength(that.session.Rules.WinLength - 1)
	case '+', '=':
		that.notice = ""
		that.session.SetWinLength(that.session.Rules.WinLength + 1)
	case 'h':
		that.session.SetHighlightWins(!that.session.Rules.HighlightWins)
	}

	return false
}

func (that *playUI) moveCursor(dRow, dCol int) {
	size := that.session.Rules.Size

	row := that.cursor/size + dRow
	col := that.cursor%size + dCol
	if row < 0 || row >= size || col < 0 || col >= size {
		return
	}

	that.cursor = row*size + col
}

func (that *playUI) place() {
	that.notice = ""

	if err := that.session.ApplyMove(that.cursor); err != nil {
		that.notice = noticeFor(err)
	}
}

func (that *playUI) jumpTo(move int) {
	if move < 0 || move > that.session.LastIndex() {
		return
	}

	that.notice = ""
	if err := that.session.JumpTo(move); err != nil {
		that.notice = noticeFor(err)
	}
}

func (that *playUI) resize(size int) {
	that.notice = ""
	that.session.Resize(size)

	if last := that.session.Rules.Size*that.session.Rules.Size - 1; that.cursor > last {
		that.cursor = last
	}
}

func (that *playUI) draw() {
	that.screen.Clear()

	session := that.session
	size := session.Rules.Size
	status := session.Status()

	for index, mark := range session.Board() {
		x := boardLeft + (index%size)*2
		y := boardTop + index/size

		style := tcell.StyleDefault
		cell := '.'

		switch mark {
		case entity.PlayerX:
			style = style.Foreground(tcell.ColorGreen).Bold(true)
			cell = 'X'
		case entity.PlayerO:
			style = style.Foreground(tcell.ColorRed).Bold(true)
			cell = 'O'
		}

		if session.Rules.HighlightWins && inLine(status.Line, index) {
			style = style.Reverse(true)
		}

		if index == that.cursor {
			style = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
		}

		that.screen.SetContent(x, y, cell, nil, style)
	}

	textTop := boardTop + size + 1
	helpStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	drawText(that.screen, boardLeft, textTop, tcell.StyleDefault.Bold(true), that.statusLine(status))
	drawText(that.screen, boardLeft, textTop+1, tcell.StyleDefault, that.rulesLine())

	if that.notice != "" {
		drawText(that.screen, boardLeft, textTop+2, tcell.StyleDefault.Foreground(tcell.ColorYellow), that.notice)
	}

	drawText(that.screen, boardLeft, textTop+4, helpStyle, "arrows move   enter place   z/x step history   0/e ends")
	drawText(that.screen, boardLeft, textTop+5, helpStyle, "r restart   [/] board size   -/+ win length   h highlight   q quit")

	that.screen.Show()
}

func (that *playUI) statusLine(status entity.Status) string {
	position := fmt.Sprintf("move %d of %d", that.session.Current, that.session.LastIndex())

	switch {
	case status.Winner != "":
		return fmt.Sprintf("%s wins, %s", status.Winner, position)
	case status.Draw:
		return fmt.Sprintf("draw, %s", position)
	default:
		return fmt.Sprintf("%s to move, %s", status.NextMark, position)
	}
}

func (that *playUI) rulesLine() string {
	highlight := "off"
	if that.session.Rules.HighlightWins {
		highlight = "on"
	}

	return fmt.Sprintf("%dx%d board, %d in a row to win, highlight %s",
		that.session.Rules.Size, that.session.Rules.Size, that.session.Rules.WinLength, highlight)
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return "that cell is taken"
	case errors.Is(err, apperror.ErrGameDecided):
		return "the game is decided, step back or restart"
	default:
		return err.Error()
	}
}

func inLine(line []int, index int) bool {
	for _, cell := range line {
		if cell == index {
			return true
		}
	}

	return false
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for offset, char := range []rune(text) {
		screen.SetContent(x+offset, y, char, nil, style)
	}
}
