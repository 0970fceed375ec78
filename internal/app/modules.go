package app

import (
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/modules/moderation"
	"github.com/vk/wardengo/modules/utility"
	"github.com/vk/wardengo/modules/welcome"
)

// coreModules is the definitive list of feature modules compiled into
// the warden binary.
var coreModules = []handler.Module{
	&moderation.Module{},
	&welcome.Module{},
	&utility.Module{},
}
