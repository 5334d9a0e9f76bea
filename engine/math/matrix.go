package math

/**
 * @brief Creates and returns an identity matrix.
 */
func NewMat4Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

/**
 * @brief Creates and returns a matrix with every element set to zero.
 * The zero matrix doubles as the result of inverting a singular matrix.
 */
func NewMat4Zero() Mat4 {
	return Mat4{}
}

/**
 * @brief Creates a matrix from its rows, as written on paper.
 */
func NewMat4(rows [4][4]float32) Mat4 {
	out := Mat4{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[r*4+c] = rows[r][c]
		}
	}
	return out
}

// At returns the element at the given row and column.
func (mt Mat4) At(row, col int) float32 {
	return mt.Data[row*4+col]
}

// Set returns a copy of the matrix with the element at (row, col) replaced.
func (mt Mat4) Set(row, col int, v float32) Mat4 {
	mt.Data[row*4+col] = v
	return mt
}

func (mt Mat4) Add(other Mat4) Mat4 {
	out := Mat4{}
	for i := range mt.Data {
		out.Data[i] = mt.Data[i] + other.Data[i]
	}
	return out
}

func (mt Mat4) Sub(other Mat4) Mat4 {
	out := Mat4{}
	for i := range mt.Data {
		out.Data[i] = mt.Data[i] - other.Data[i]
	}
	return out
}

/**
 * @brief Returns the product mt * other. Applied to a column vector the
 * product transforms by other first, then by mt.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

func (mt Mat4) MulScalar(s float32) Mat4 {
	out := Mat4{}
	for i := range mt.Data {
		out.Data[i] = mt.Data[i] * s
	}
	return out
}

// MulVec4 multiplies the matrix by the column vector v.
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := &mt.Data
	return Vec4{
		X: d[0]*v.X + d[1]*v.Y + d[2]*v.Z + d[3]*v.W,
		Y: d[4]*v.X + d[5]*v.Y + d[6]*v.Z + d[7]*v.W,
		Z: d[8]*v.X + d[9]*v.Y + d[10]*v.Z + d[11]*v.W,
		W: d[12]*v.X + d[13]*v.Y + d[14]*v.Z + d[15]*v.W,
	}
}

func (mt Mat4) Transpose() Mat4 {
	out := Mat4{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = mt.Data[r*4+c]
		}
	}
	return out
}

/**
 * @brief Returns the determinant, expanded recursively along the first row.
 */
func (mt Mat4) Determinant() float32 {
	return determinant(mt.Data[:], 4)
}

/**
 * @brief Returns the determinant of the 3x3 minor obtained by removing
 * the given row and column.
 */
func (mt Mat4) Cofactor(row, col int) float32 {
	return determinant(minor(mt.Data[:], 4, row, col), 3)
}

/**
 * @brief Returns the cofactor with its checkerboard sign applied,
 * (-1)^(row+col) * Cofactor(row, col).
 */
func (mt Mat4) SignedCofactor(row, col int) float32 {
	c := mt.Cofactor(row, col)
	if (row+col)%2 == 1 {
		return -c
	}
	return c
}

/**
 * @brief Returns the adjoint: the transpose of the signed cofactor matrix.
 */
func (mt Mat4) Adjoint() Mat4 {
	out := Mat4{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = mt.SignedCofactor(r, c)
		}
	}
	return out
}

/**
 * @brief Returns adjoint / determinant. A singular matrix yields the zero
 * matrix instead of an error; check Determinant first when that matters.
 */
func (mt Mat4) Inverse() Mat4 {
	det := mt.Determinant()
	if det == 0 {
		return NewMat4Zero()
	}
	return mt.Adjoint().MulScalar(1 / det)
}

// Equals reports whether every element differs by at most tolerance.
func (mt Mat4) Equals(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if !FloatEquals(mt.Data[i], other.Data[i], tolerance) {
			return false
		}
	}
	return true
}

// IsZero reports whether the matrix is the zero sentinel.
func (mt Mat4) IsZero() bool {
	return mt == Mat4{}
}

// determinant works on any square matrix stored row-major in m.
func determinant(m []float32, n int) float32 {
	switch n {
	case 1:
		return m[0]
	case 2:
		return m[0]*m[3] - m[1]*m[2]
	}
	det := float32(0)
	sign := float32(1)
	for col := 0; col < n; col++ {
		if m[col] != 0 {
			det += sign * m[col] * determinant(minor(m, n, 0, col), n-1)
		}
		sign = -sign
	}
	return det
}

func minor(m []float32, n, row, col int) []float32 {
	out := make([]float32, 0, (n-1)*(n-1))
	for r := 0; r < n; r++ {
		if r == row {
			continue
		}
		for c := 0; c < n; c++ {
			if c == col {
				continue
			}
			out = append(out, m[r*n+c])
		}
	}
	return out
}
