package main

import (
	"nbadata-backend/cmd/collector/commands"
	"nbadata-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
