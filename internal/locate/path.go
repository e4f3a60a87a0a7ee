// Package locate 模拟一台沿既定路径匀速移动的 MBT02 中继设备，
// 周期性产出 RelayLocated 定位报文（含 4 个固定网关的距离/RSSI 观测）。
package locate

// Point 场地坐标系中的一个位置（米）
type Point struct {
	X float64
	Y float64
}

// DefaultWaypoints 默认路径：进门沿过道走到底，原地掉头，折返到门口。
func DefaultWaypoints() []Point {
	return []Point{
		{0.0, 10.0},
		{0.0, 10.2},
		{3.0, 10.5},
		{6.0, 10.8},
		{10.0, 9.8},
		{10.0, 10.0},
		{10.0, 10.1},
		{10.0, 9.9},
		{10.0, 10.5},
		{10.0, 10.3},
		{6.0, 10.1},
		{5.0, 10.5},
		{4.8, 9.8},
		{4.6, 9.7},
		{4.0, 9.5},
		{3.5, 8.0},
		{3.0, 6.0},
		{3.1, 6.1},
		{3.0, 5.9},
	}
}

// Interpolate 将稀疏路径点线性插值为致密轨迹。
// 每对相邻点之间插 stepsPerSegment 步（t 从 0 起步、不含 1），
// 最后补一次终点，保证首尾路径点各出现一次且段间不重复。
// 空输入返回空轨迹。
func Interpolate(waypoints []Point, stepsPerSegment int) []Point {
	if len(waypoints) == 0 {
		return nil
	}

	pts := make([]Point, 0, (len(waypoints)-1)*stepsPerSegment+1)
	for i := 0; i < len(waypoints)-1; i++ {
		p0, p1 := waypoints[i], waypoints[i+1]
		for s := 0; s < stepsPerSegment; s++ {
			t := float64(s) / float64(stepsPerSegment)
			pts = append(pts, Point{
				X: p0.X + (p1.X-p0.X)*t,
				Y: p0.Y + (p1.Y-p0.Y)*t,
			})
		}
	}
	return append(pts, waypoints[len(waypoints)-1])
}

// LoopSequence 把单程轨迹扩展为往返循环：正向轨迹接上去掉首尾两点的逆向轨迹，
// 避免端点连发两次。轨迹不超过 2 个点时逆向部分为空。
func LoopSequence(path []Point) []Point {
	if len(path) <= 2 {
		return path
	}

	seq := make([]Point, 0, 2*len(path)-2)
	seq = append(seq, path...)
	for i := len(path) - 2; i >= 1; i-- {
		seq = append(seq, path[i])
	}
	return seq
}
