/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// console 面向用户的简短输出，仅在终端中着色
type console struct {
	out   io.Writer
	color bool
}

func newConsole(out io.Writer) *console {
	c := &console{out: out}
	if f, ok := out.(*os.File); ok {
		c.color = term.IsTerminal(int(f.Fd()))
	}
	return c
}

func (c *console) render(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}

func (c *console) Step(text string) {
	_, _ = fmt.Fprintln(c.out, c.render(stepStyle, text))
}

func (c *console) Success(text string) {
	_, _ = fmt.Fprintln(c.out, c.render(successStyle, text))
}

func (c *console) Error(text string) {
	_, _ = fmt.Fprintln(c.out, c.render(errorStyle, "Error: "+text))
}

func (c *console) Detail(format string, a ...interface{}) {
	_, _ = fmt.Fprintln(c.out, c.render(detailStyle, fmt.Sprintf(format, a...)))
}
