package server

import (
	"fmt"
	"strconv"
	"strings"
)

// 迷宫尺寸与格子类型：0 = 通路，1 = 墙
const (
	MazeWidth  = 20
	MazeHeight = 19

	CellPath = 0
	CellWall = 1
)

// Position 格子坐标（值类型，按相等比较）
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key 返回坐标的规范字符串形式，作为豆子/道具集合的键
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ParsePositionKey 将 "x,y" 还原为坐标，非法格式返回 false
func ParsePositionKey(key string) (Position, bool) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return Position{}, false
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Position{}, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

// Maze 行优先的迷宫网格：maze[y][x]
type Maze [][]int

// GenerateMaze 按固定公式生成 20x19 迷宫（无随机，形状恒定）
// 边界为墙；内部按 (x%4==0 && y%4==0) 或 (x%6==0 && y%3==0) 布墙；
// 左上角 3x3 出生区强制清空
func GenerateMaze() Maze {
	maze := make(Maze, MazeHeight)
	for y := 0; y < MazeHeight; y++ {
		maze[y] = make([]int, MazeWidth)
		for x := 0; x < MazeWidth; x++ {
			switch {
			case x == 0 || x == MazeWidth-1 || y == 0 || y == MazeHeight-1:
				maze[y][x] = CellWall
			case (x%4 == 0 && y%4 == 0) || (x%6 == 0 && y%3 == 0):
				maze[y][x] = CellWall
			default:
				maze[y][x] = CellPath
			}
		}
	}
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			maze[y][x] = CellPath
		}
	}
	return maze
}

// GeneratePellets 在每个通路格子上放一颗豆子
func GeneratePellets(maze Maze) map[string]struct{} {
	pellets := make(map[string]struct{})
	for y := range maze {
		for x := range maze[y] {
			if maze[y][x] == CellPath {
				pellets[Position{X: x, Y: y}.Key()] = struct{}{}
			}
		}
	}
	return pellets
}

// PathCells 列出所有通路格子，供道具刷新时随机取点
func PathCells(maze Maze) []Position {
	cells := make([]Position, 0, MazeWidth*MazeHeight)
	for y := range maze {
		for x := range maze[y] {
			if maze[y][x] == CellPath {
				cells = append(cells, Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// InBounds 判断坐标是否落在迷宫范围内
func (m Maze) InBounds(p Position) bool {
	return p.Y >= 0 && p.Y < len(m) && p.X >= 0 && p.X < len(m[p.Y])
}

// IsPath 判断坐标是否为可行走的通路格
func (m Maze) IsPath(p Position) bool {
	return m.InBounds(p) && m[p.Y][p.X] == CellPath
}
