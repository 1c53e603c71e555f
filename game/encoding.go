package game

// SquareView is the read-only description of one square for a renderer.
type SquareView struct {
	Square      Square
	Piece       Piece
	Selected    bool // the selected origin
	Destination bool // a legal destination of the selected piece
	LastMove    bool // origin or destination of the last committed move
}

// View is everything a renderer needs to draw the board.
type View struct {
	Squares [numSquares]SquareView
	Turn    Side
	Status  Status
	CanUndo bool
	CanRedo bool
	Moves   string
}

// View encodes the game for a renderer.
func (g *Machine) View() View {
	v := View{
		Turn:    g.current.Turn,
		Status:  g.status,
		CanUndo: g.CanUndo(),
		CanRedo: g.CanRedo(),
		Moves:   g.MoveList(),
	}
	for i := range v.Squares {
		sq := Square(i)
		v.Squares[i] = SquareView{Square: sq, Piece: g.current.Piece(sq)}
	}
	if sel, ok := g.selection.(PieceSelected); ok {
		v.Squares[sel.Origin].Selected = true
		for _, d := range sel.Destinations {
			v.Squares[d].Destination = true
		}
	}
	if m, ok := g.LastMove(); ok {
		v.Squares[m.From].LastMove = true
		v.Squares[m.To].LastMove = true
	}
	return v
}

// Material sums piece values per side: pawn 1, knight 3, bishop 3, rook 5,
// queen 9.
func Material(p Position) (white, black int) {
	for _, pc := range p.Board {
		v := PieceValue(pc.Kind)
		if pc.Side == White {
			white += v
		} else {
			black += v
		}
	}
	return white, black
}

var pieceValues = [...]int{NoKind: 0, Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9, King: 0}

// PieceValue returns the material value of k. Kings are worth nothing.
func PieceValue(k PieceKind) int {
	if k < 0 || int(k) >= len(pieceValues) {
		return 0
	}
	return pieceValues[k]
}
