package preview

import "testing"

func TestPlace(t *testing.T) {
	t.Parallel()

	box := Size{Width: 640, Height: 480}
	view := Size{Width: 1280, Height: 800}

	tests := []struct {
		name string
		x, y int
		box  Size
		view Size
		want Position
	}{
		{
			name: "below right of pointer",
			x:    100, y: 100,
			box: box, view: view,
			want: Position{X: 120, Y: 120},
		},
		{
			name: "flips left when overflowing right",
			x:    1000, y: 100,
			box: box, view: view,
			want: Position{X: 340, Y: 120},
		},
		{
			name: "flips up when overflowing bottom",
			x:    100, y: 700,
			box: box, view: view,
			want: Position{X: 120, Y: 200},
		},
		{
			name: "exactly fits at the margin",
			x:    610, y: 290,
			box: box, view: view,
			want: Position{X: 630, Y: 310},
		},
		{
			name: "pinned to margin when flip underflows",
			x:    300, y: 300,
			box: box, view: Size{Width: 700, Height: 500},
			want: Position{X: EdgeMargin, Y: EdgeMargin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Place(tt.x, tt.y, tt.box, tt.view)
			if got != tt.want {
				t.Errorf("Place(%d, %d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
