package term

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"

	"github.com/alphabeth/game"
)

const (
	leftMargin = 4
	topMargin  = 4

	boardLeft   = leftMargin + 2 // first square column
	squareWidth = 2
	meterLeft   = boardLeft + game.ColNum*squareWidth + 2
	meterCells  = 8
	lineWidth   = 60
)

// drawText places text at the specified coordinates with the provided style
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// clearLine blanks a full text line starting at x.
func clearLine(s tcell.Screen, x, y int) {
	for i := 0; i < lineWidth; i++ {
		s.SetContent(x+i, y, ' ', nil, tcell.StyleDefault)
	}
}

var pieceRunes = [2][7]rune{
	game.White: {' ', '♙', '♘', '♗', '♖', '♕', '♔'},
	game.Black: {' ', '♟', '♞', '♝', '♜', '♛', '♚'},
}

// PieceRune returns the figurine drawn for p.
func PieceRune(p game.Piece) rune {
	if p.Empty() {
		return ' '
	}
	return pieceRunes[p.Side][p.Kind]
}

// squareBg returns the theme's color for a square, highlights first.
func squareBg(v game.SquareView, t Theme) tcell.Color {
	switch {
	case v.Selected:
		return t.SquareOrigin
	case v.Destination:
		return t.SquareDest
	case v.LastMove:
		return t.SquareLast
	case (v.Square.File()+v.Square.Rank())%2 == 0:
		return t.SquareDark
	}
	return t.SquareLight
}

// screenSquare returns the square drawn at board row and column, counted
// from the top left.
func screenSquare(row, col int, flipped bool) game.Square {
	if flipped {
		return game.NewSquare(game.ColNum-1-col, row)
	}
	return game.NewSquare(col, game.RowNum-1-row)
}

func drawBoard(s tcell.Screen, v game.View, t Theme, flipped bool) {
	rankStyle := tcell.StyleDefault.Foreground(t.Rank)
	for row := 0; row < game.RowNum; row++ {
		y := topMargin + row
		rank := screenSquare(row, 0, flipped).Rank()
		s.SetContent(leftMargin, y, rune('1'+rank), nil, rankStyle)
		for col := 0; col < game.ColNum; col++ {
			sv := v.Squares[screenSquare(row, col, flipped)]
			bg := squareBg(sv, t)
			style := tcell.StyleDefault.Background(bg).Foreground(t.White)
			if !sv.Piece.Empty() && sv.Piece.Side == game.Black {
				style = style.Foreground(t.Black)
			}
			x := boardLeft + col*squareWidth
			s.SetContent(x, y, PieceRune(sv.Piece), nil, style)
			s.SetContent(x+1, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}
	files := "a b c d e f g h"
	if flipped {
		files = "h g f e d c b a"
	}
	drawText(s, boardLeft, topMargin+game.RowNum, tcell.StyleDefault.Foreground(t.File), files)
}

// TurnLabel names the side to move, or the outcome once the game is over.
func TurnLabel(v game.View) string {
	switch v.Status {
	case game.Ongoing:
		return fmt.Sprintf(" %v to Move ", v.Turn)
	case game.Checkmate:
		return fmt.Sprintf(" Checkmate, %v wins ", v.Turn.Other())
	case game.Stalemate:
		return " Stalemate "
	case game.InsufficientMaterial:
		return " Draw by insufficient material "
	case game.SeventyFiveMoveDraw:
		return " Draw by the 75-move rule "
	case game.FivefoldRepetition:
		return " Draw by fivefold repetition "
	}
	return " Game over "
}

func drawMoveLabel(s tcell.Screen, v game.View, t Theme) {
	clearLine(s, boardLeft, topMargin-2)
	style := tcell.StyleDefault.Background(t.MoveLabelBg).Foreground(t.MoveLabelFg)
	drawText(s, boardLeft, topMargin-2, style, TurnLabel(v))
}

// WinProbability maps a material advantage in pawns to the chance of
// winning on a logistic curve.
func WinProbability(advantage int) float32 {
	return 1 / (1 + math32.Exp(-float32(advantage)/4))
}

// drawMeter shows side's winning chances as a vertical bar next to the
// board.
func drawMeter(s tcell.Screen, p game.Position, side game.Side, t Theme) {
	white, black := game.Material(p)
	advantage := white - black
	if side == game.Black {
		advantage = -advantage
	}
	prob := WinProbability(advantage)
	lit := int(prob*meterCells + 0.5)

	color := t.MeterNeutral
	switch {
	case advantage > 0:
		color = t.MeterWin
	case advantage < 0:
		color = t.MeterLose
	}
	for i := 0; i < meterCells; i++ {
		style := tcell.StyleDefault.Foreground(t.MeterBase)
		if i < lit {
			style = tcell.StyleDefault.Foreground(color)
		}
		s.SetContent(meterLeft, topMargin+meterCells-1-i, '█', nil, style)
	}
	drawText(s, meterLeft+2, topMargin+meterCells-1, tcell.StyleDefault.Foreground(t.Help),
		fmt.Sprintf("%3.0f%%", prob*100))
}

// drawMoves shows the tail of the move list that fits on one line.
func drawMoves(s tcell.Screen, v game.View, t Theme) {
	clearLine(s, leftMargin, topMargin+game.RowNum+2)
	moves := []rune(v.Moves)
	if len(moves) > lineWidth {
		moves = append([]rune("…"), moves[len(moves)-lineWidth+1:]...)
	}
	drawText(s, leftMargin, topMargin+game.RowNum+2, tcell.StyleDefault.Foreground(t.Moves), string(moves))
}

// DrawMsgLabel displays a message under the board.
func DrawMsgLabel(s tcell.Screen, msg string, t Theme) {
	clearLine(s, leftMargin, topMargin+game.RowNum+3)
	drawText(s, leftMargin, topMargin+game.RowNum+3, tcell.StyleDefault.Foreground(t.Msg), msg)
}

func drawHelp(s tcell.Screen, v game.View, t Theme) {
	y := topMargin + game.RowNum + 5
	enabled := tcell.StyleDefault.Foreground(t.Help)
	disabled := tcell.StyleDefault.Foreground(t.Disabled)
	style := func(ok bool) tcell.Style {
		if ok {
			return enabled
		}
		return disabled
	}
	x := leftMargin
	for _, item := range []struct {
		text string
		ok   bool
	}{
		{"[u] undo", v.CanUndo},
		{"[r] redo", v.CanRedo},
		{"[n] new game", true},
		{"[q] quit", true},
	} {
		drawText(s, x, y, style(item.ok), item.text)
		x += len(item.text) + 2
	}
}
