package term

import "github.com/gdamore/tcell/v2"

// Theme is used for coloring the UI. Colors should stay within the xterm
// 256 color palette.
type Theme struct {
	Name         string      `json:"name"`
	MoveLabelBg  tcell.Color `json:"moveLabelBg"`
	MoveLabelFg  tcell.Color `json:"moveLabelFg"`
	SquareDark   tcell.Color `json:"squareDark"`
	SquareLight  tcell.Color `json:"squareLight"`
	SquareOrigin tcell.Color `json:"squareOrigin"`
	SquareDest   tcell.Color `json:"squareDest"`
	SquareLast   tcell.Color `json:"squareLast"`
	White        tcell.Color `json:"white"`
	Black        tcell.Color `json:"black"`
	Msg          tcell.Color `json:"msg"`
	Rank         tcell.Color `json:"rank"`
	File         tcell.Color `json:"file"`
	MeterBase    tcell.Color `json:"meterBase"`
	MeterNeutral tcell.Color `json:"meterNeutral"`
	MeterWin     tcell.Color `json:"meterWin"`
	MeterLose    tcell.Color `json:"meterLose"`
	Moves        tcell.Color `json:"moves"`
	Help         tcell.Color `json:"help"`
	Disabled     tcell.Color `json:"disabled"`
}

// ThemeBasic is the default theme
var ThemeBasic = Theme{
	"basic",        // Name
	tcell.Color252, // MoveLabelBg
	tcell.ColorBlack,
	tcell.Color188, // SquareDark
	tcell.Color230, // SquareLight
	tcell.Color226, // SquareOrigin
	tcell.Color223, // SquareDest
	tcell.Color194, // SquareLast
	tcell.Color232, // White
	tcell.Color232, // Black
	tcell.Color160, // Msg
	tcell.Color247, // Rank
	tcell.Color247, // File
	tcell.Color240, // MeterBase
	tcell.Color45,  // MeterNeutral
	tcell.Color122, // MeterWin
	tcell.Color167, // MeterLose
	tcell.ColorDefault,
	tcell.Color247, // Help
	tcell.Color240, // Disabled
}
