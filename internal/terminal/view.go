package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const clearSequence = "\033[H\033[2J"

// Styles used on the quiz screens
var (
	styleTitle   = []color.Attribute{color.FgCyan, color.Bold}
	styleGood    = []color.Attribute{color.FgGreen, color.Bold}
	styleBad     = []color.Attribute{color.FgRed, color.Bold}
	styleHint    = []color.Attribute{color.FgYellow}
	styleWarning = []color.Attribute{color.FgYellow, color.Bold}
	styleScore   = []color.Attribute{color.FgBlue, color.Bold}
	styleBold    = []color.Attribute{color.Bold}
)

// Title is shown on every screen
const Title = "Dr. Tempus - Desafio Histórico"

// View draws the quiz screens on a terminal
type View struct {
	out   io.Writer
	color bool
}

// NewView creates a view writing to out. Colour and screen clearing are only used when
// colored is set, so the output stays readable when redirected.
func NewView(out io.Writer, colored bool) *View {
	return &View{out: out, color: colored}
}

func (v *View) ShowStart() error {
	v.clear()
	return v.print(
		v.colorize(Title, styleTitle),
		strings.Repeat("-", len([]rune(Title))),
		"Responda às perguntas históricas com suas próprias palavras.",
		"",
		v.colorize("Pressione Enter para começar", styleGood)+" ("+cmdQuit+" para sair).",
	)
}

func (v *View) ShowQuestion(number int, text string) error {
	v.clear()
	return v.print(
		v.colorize(Title, styleTitle),
		"",
		v.colorize(fmt.Sprintf("Pergunta %d: %s", number, text), styleBold),
		"",
		v.colorize("Digite sua resposta e pressione Enter ("+cmdSkip+" para pular, "+cmdQuit+" para sair).", styleHint),
	)
}

func (v *View) ShowScore(total int) error {
	return v.print(v.colorize(fmt.Sprintf("Pontuação: %d", total), styleScore))
}

func (v *View) ShowFinished(score, total int) error {
	v.clear()
	return v.print(
		v.colorize(Title, styleTitle),
		"",
		v.colorize("Quiz finalizado!", styleGood),
		fmt.Sprintf("Pontuação total: %d / %d", score, total),
		"",
		v.colorize("r", styleGood)+") Recomeçar   "+v.colorize("s", styleBad)+") Sair",
	)
}

func (v *View) ShowWarning(title, message string) error {
	return v.print(v.colorize("⚠ "+title+": ", styleWarning) + message)
}

func (v *View) ShowError(message string) error {
	return v.print(v.colorize("❌ Erro", styleBad), message)
}

func (v *View) Close() error {
	return v.print("", "Até logo!")
}

func (v *View) print(lines ...string) error {
	_, err := fmt.Fprintln(v.out, strings.Join(lines, "\n"))
	return err
}

func (v *View) clear() {
	if v.color {
		fmt.Fprint(v.out, clearSequence)
	}
}

func (v *View) colorize(s string, style []color.Attribute) string {
	if !v.color || len(style) == 0 {
		return s
	}
	c := color.New(style...)
	// out is not always stdout, so terminal detection is bypassed
	c.EnableColor()
	return c.Sprint(s)
}
