package server

import "testing"

func TestGenerateMazeBordersAreWalls(t *testing.T) {
	maze := GenerateMaze()
	if len(maze) != MazeHeight {
		t.Fatalf("expected %d rows, got %d", MazeHeight, len(maze))
	}
	for y := 0; y < MazeHeight; y++ {
		if len(maze[y]) != MazeWidth {
			t.Fatalf("row %d: expected %d cells, got %d", y, MazeWidth, len(maze[y]))
		}
		for x := 0; x < MazeWidth; x++ {
			onBorder := x == 0 || x == MazeWidth-1 || y == 0 || y == MazeHeight-1
			if onBorder && maze[y][x] != CellWall {
				t.Fatalf("border cell (%d,%d) is not a wall", x, y)
			}
		}
	}
}

func TestGenerateMazeSpawnPocketIsClear(t *testing.T) {
	maze := GenerateMaze()
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if maze[y][x] != CellPath {
				t.Fatalf("spawn cell (%d,%d) is not a path", x, y)
			}
		}
	}
}

func TestGenerateMazeInternalWallFormula(t *testing.T) {
	maze := GenerateMaze()
	cases := []struct {
		x, y, want int
	}{
		{4, 4, CellWall},  // x%4==0 && y%4==0
		{6, 3, CellWall},  // x%6==0 && y%3==0
		{12, 9, CellWall}, // x%6==0 && y%3==0
		{5, 5, CellPath},
		{7, 2, CellPath},
	}
	for _, c := range cases {
		if maze[c.y][c.x] != c.want {
			t.Fatalf("cell (%d,%d): expected %d, got %d", c.x, c.y, c.want, maze[c.y][c.x])
		}
	}
}

func TestGenerateMazeIsDeterministic(t *testing.T) {
	a := GenerateMaze()
	b := GenerateMaze()
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				t.Fatalf("mazes differ at (%d,%d)", x, y)
			}
		}
	}
}

func TestGeneratePelletsCoverAllPathCells(t *testing.T) {
	maze := GenerateMaze()
	pellets := GeneratePellets(maze)

	pathCells := 0
	for y := range maze {
		for x := range maze[y] {
			if maze[y][x] == CellPath {
				pathCells++
				if _, ok := pellets[(Position{X: x, Y: y}).Key()]; !ok {
					t.Fatalf("path cell (%d,%d) has no pellet", x, y)
				}
			}
		}
	}
	if len(pellets) != pathCells {
		t.Fatalf("expected %d pellets, got %d", pathCells, len(pellets))
	}
	if len(PathCells(maze)) != pathCells {
		t.Fatalf("PathCells returned %d cells, expected %d", len(PathCells(maze)), pathCells)
	}
}

func TestPositionKeyRoundTrip(t *testing.T) {
	for _, p := range []Position{{X: 0, Y: 0}, {X: 19, Y: 18}, {X: 7, Y: 12}} {
		got, ok := ParsePositionKey(p.Key())
		if !ok {
			t.Fatalf("key %q did not parse", p.Key())
		}
		if got != p {
			t.Fatalf("round trip of %v gave %v", p, got)
		}
	}
	for _, bad := range []string{"", "1", "a,b", "1,b"} {
		if _, ok := ParsePositionKey(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down", "left", "right"} {
		if _, ok := ParseDirection(s); !ok {
			t.Fatalf("direction %q rejected", s)
		}
	}
	for _, s := range []string{"", "UP", "north", "rightt"} {
		if _, ok := ParseDirection(s); ok {
			t.Fatalf("direction %q accepted", s)
		}
	}
}
