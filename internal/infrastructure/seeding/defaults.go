package seeding

import "github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"

// Placeholder is the starter blueprint offered in the editor
func Placeholder() *blueprint.Element {
	return blueprint.NewElement("div",
		blueprint.NewElement("div",
			blueprint.NewElement("h1", blueprint.Text("Welcome to My Awesome Site")).
				WithAttr("className", "text-5xl font-bold text-blue-400 mb-4"),
			blueprint.NewElement("p", blueprint.Text("This is a site generated from a JSON blueprint.")).
				WithAttr("className", "text-lg text-gray-300"),
		).WithAttr("className", "text-center"),
	).WithAttr("className", "bg-gray-900 text-white min-h-screen p-8 font-sans")
}

// Defaults are seeded when no seed directory is configured
func Defaults() []Seed {
	return []Seed{
		{Title: "My Personal Blog", Root: Placeholder(), Path: "builtin:blog"},
		{Title: "Project Phoenix Showcase", Root: Placeholder(), Path: "builtin:phoenix"},
	}
}
