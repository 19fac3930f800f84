package system

import (
	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/tui"
)

type TuiCmd struct{}

func (cmd *TuiCmd) Run(ctx *cli.Context) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}
	return tui.Run(ctx.Store, ctx.Status, ctx.Stats, user)
}
