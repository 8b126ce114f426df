package crumbs

type Option func(bc *Breadcrumbs)

func WithSeparator(separator string) Option {
	return func(bc *Breadcrumbs) {
		bc.separator = separator
	}
}

// WithSelectedColor sets the color of the selected crumb while focused.
func WithSelectedColor(color string) Option {
	return func(bc *Breadcrumbs) {
		bc.selectedColor = color
	}
}
