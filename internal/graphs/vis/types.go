package vis

type font struct {
	Color string `json:"color,omitempty"`
}

type color struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

type node struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Title   string  `json:"title,omitempty"`
	Group   int     `json:"group"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Color   color   `json:"color"`
	Fixed   bool    `json:"fixed,omitempty"`
	Opacity float64 `json:"opacity"`
	Font    *font   `json:"font,omitempty"`
}

type edgeColor struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type edge struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Label  string    `json:"label,omitempty"`
	Title  string    `json:"title,omitempty"`
	Width  float64   `json:"width"`
	Color  edgeColor `json:"color"`
	Arrows string    `json:"arrows,omitempty"`
}

type network struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}
