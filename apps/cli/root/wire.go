package root

import (
	"github.com/rshetty-99/ai-marketplace-sub008/apps/cli/cmd/migrate"
	slugcmd "github.com/rshetty-99/ai-marketplace-sub008/apps/cli/cmd/slug"
)

func init() {
	Root().AddCommand(migrate.Command())
	Root().AddCommand(slugcmd.Command())
}
