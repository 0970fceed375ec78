package middleware

import "github.com/vk/wardengo/internal/pipeline"

// Stock builds the base chain every dispatch runs, in enforcement order:
// authorization, then staleness, then the limiters. Each gate passes
// untouched when its knob is zero, so one chain serves every route.
func Stock(cd *Cooldown, th *Throttle, res *Resource) []pipeline.Middleware {
	return []pipeline.Middleware{
		Permissions(),
		Expiry(),
		cd.Middleware(),
		th.Middleware(),
		res.Middleware(),
	}
}
