package flow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

// IPChars holds the characterization of the IPs: the time and energy of one
// frame at each operating point, the cubic time predictors of the
// bandwidth-sensitive devices, and the most energy-efficient operating point
// of every IP type.
type IPChars struct {
	Time          [soc.NumIPTypes][power.NumIPStates]float64
	Energy        [soc.NumIPTypes][power.NumIPStates]float64
	Coeffs        [soc.NumIPTypes][4]float64
	OptimalIndex  [soc.NumIPTypes]int
	OptimalEnergy [soc.NumIPTypes]float64
}

// characterized lists the IPs that appear in the characterization file, in
// file order.
func characterized() []soc.IPType {
	return []soc.IPType{soc.VD, soc.VE, soc.IMG, soc.GPU}
}

// DefaultIPChars returns the characterization used when no file is given.
// Time and energy tables are left empty.
func DefaultIPChars() *IPChars {
	c := &IPChars{}
	c.finish()

	return c
}

func (c *IPChars) finish() {
	c.Time[soc.DC][2] = 3.167

	predictor := [4]float64{-0.0115, 0.3574, -3.8969, 18.473}
	c.Coeffs[soc.DC] = predictor
	c.Coeffs[soc.CAM] = predictor

	for i := range c.OptimalIndex {
		c.OptimalIndex[i] = 1
	}

	c.OptimalIndex[soc.CPU] = 6
	c.OptimalIndex[soc.VE] = 2
	c.OptimalIndex[soc.AE] = 2
	c.OptimalIndex[soc.IMG] = 2

	for ip := soc.VD; ip <= soc.GPU; ip++ {
		c.OptimalEnergy[ip] = c.Energy[ip][c.OptimalIndex[ip]]
	}
}

// PredictTime returns the predicted frame time in milliseconds of a
// bandwidth-sensitive device given the available bandwidth in GB/s.
func (c *IPChars) PredictTime(ip soc.IPType, bw float64) float64 {
	k := c.Coeffs[ip]
	return k[0]*bw*bw*bw + k[1]*bw*bw + k[2]*bw + k[3]
}

// LoadIPCharsFile reads the characterization from a file.
func LoadIPCharsFile(path string) (*IPChars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ipchars file: %w", err)
	}
	defer f.Close()

	c, err := LoadIPChars(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return c, nil
}

// LoadIPChars reads a characterization. The input is a stream of
// white-space separated tokens: a header token, then for each of VD, VE, IMG,
// and GPU the seven per-point times followed by a label token, then the same
// layout for energies.
func LoadIPChars(r io.Reader) (*IPChars, error) {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return "", err
			}

			return "", fmt.Errorf("unexpected end of input: %w",
				ErrMalformedLine)
		}

		return s.Text(), nil
	}

	c := &IPChars{}

	if _, err := next(); err != nil {
		return nil, err
	}

	for _, table := range []*[soc.NumIPTypes][power.NumIPStates]float64{
		&c.Time, &c.Energy,
	} {
		for _, ip := range characterized() {
			for j := 0; j < power.NumIPStates; j++ {
				tok, err := next()
				if err != nil {
					return nil, err
				}

				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, fmt.Errorf("%s point %d: %w: %w",
						ip, j, ErrMalformedLine, err)
				}

				table[ip][j] = v
			}

			if _, err := next(); err != nil {
				return nil, err
			}
		}
	}

	c.finish()

	return c, nil
}
