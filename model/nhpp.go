package model

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NHPPHeader is the first token of every data file
const NHPPHeader = "NHPP"

// Reader implementors build Data from a byte stream
type Reader interface {
	ReadData(data []byte) (*Data, error)
}

// NHPPReader reads our plain text data format. Tokens are whitespace
// delimited and lines starting with 'c' are comments:
//
//	NHPP
//	J P
//	x_11 ... x_1P      (J rows of the design matrix)
//	n_1 r_1 ... r_n1   (J groups: count then distances)
//	G g_1 ... g_G      (evaluation grid)
type NHPPReader struct{}

// fieldReader walks space-delimited tokens
type fieldReader struct {
	pos    int
	fields []string
}

func newFieldReader(data string) *fieldReader {
	return &fieldReader{0, strings.Fields(data)}
}

func (fr *fieldReader) read() (string, error) {
	if fr.pos >= len(fr.fields) {
		return "", io.EOF
	}
	p := fr.pos
	fr.pos++
	return fr.fields[p], nil
}

func (fr *fieldReader) readInt() (int, error) {
	s, err := fr.read()
	if err != nil {
		return 0, err
	}

	i, err := strconv.ParseInt(s, 10, 0)
	return int(i), err
}

func (fr *fieldReader) readFloats(dst []float64) error {
	for i := range dst {
		s, err := fr.read()
		if err != nil {
			return err
		}
		dst[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
	}
	return nil
}

// Remove blank and comment lines
func nhppPreprocess(data []byte) (string, int) {
	lines := strings.Split(string(data), "\n")

	newPos := 0
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == 'c' {
			continue
		}
		lines[newPos] = ln
		newPos++
	}

	return strings.Join(lines[:newPos], "\n"), newPos
}

// ReadData implements the Reader interface
func (r NHPPReader) ReadData(data []byte) (*Data, error) {
	text, lineCount := nhppPreprocess(data)
	if lineCount < 1 {
		return nil, errors.Errorf("No lines found in data")
	}
	fr := newFieldReader(text)

	head, err := fr.read()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading header")
	}
	if head != NHPPHeader {
		return nil, errors.Errorf("Unknown data header %v", head)
	}

	groupCount, err := fr.readInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading group count")
	}
	covCount, err := fr.readInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading covariate count")
	}
	if groupCount < 1 || covCount < 1 {
		return nil, errors.Errorf("Invalid dimensions J=%d, P=%d", groupCount, covCount)
	}

	x := make([]float64, groupCount*covCount)
	for j := 0; j < groupCount; j++ {
		if err = fr.readFloats(x[j*covCount : (j+1)*covCount]); err != nil {
			return nil, errors.Wrapf(err, "Error reading design matrix row %d", j)
		}
	}

	d := &Data{
		X:      mat.NewDense(groupCount, covCount, x),
		Groups: make([]Group, groupCount),
	}

	for j := 0; j < groupCount; j++ {
		n, err := fr.readInt()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading count for group %d", j)
		}
		if n < 0 {
			return nil, errors.Errorf("Invalid count %d for group %d", n, j)
		}

		d.Groups[j] = Group{Start: len(d.Distances), Len: n}
		dist := make([]float64, n)
		if err = fr.readFloats(dist); err != nil {
			return nil, errors.Wrapf(err, "Error reading distances for group %d", j)
		}
		d.Distances = append(d.Distances, dist...)
	}

	gridLen, err := fr.readInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading grid length")
	}
	if gridLen < 1 {
		return nil, errors.Errorf("Invalid grid length %d", gridLen)
	}
	d.Grid = make([]float64, gridLen)
	if err = fr.readFloats(d.Grid); err != nil {
		return nil, errors.Wrap(err, "Error reading grid")
	}

	if fr.pos != len(fr.fields) {
		return nil, errors.Errorf("Found %d unexpected trailing fields", len(fr.fields)-fr.pos)
	}

	return d, nil
}

// NewDataFromFile reads and checks a data file
func NewDataFromFile(r Reader, filename string) (*Data, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ data from %s", filename)
	}

	d, err := NewDataFromBuffer(r, data)
	if err != nil {
		return nil, errors.Wrapf(err, "Bad data file %s", filename)
	}

	return d, nil
}

// NewDataFromBuffer creates data from the given pre-read bytes
func NewDataFromBuffer(r Reader, data []byte) (*Data, error) {
	d, err := r.ReadData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE data")
	}

	if err = d.Check(); err != nil {
		return nil, errors.Wrapf(err, "Data is invalid")
	}

	return d, nil
}

// WriteData writes d in the format NHPPReader understands
func WriteData(w io.Writer, d *Data) error {
	bw := bufio.NewWriter(w)
	rows, cols := d.X.Dims()

	fmt.Fprintf(bw, "%s\n", NHPPHeader)
	fmt.Fprintf(bw, "c groups covariates\n%d %d\n", rows, cols)

	fmt.Fprintf(bw, "c design matrix\n")
	for j := 0; j < rows; j++ {
		writeFloats(bw, mat.Row(nil, j, d.X))
	}

	fmt.Fprintf(bw, "c count then distances, one group per line\n")
	for j := range d.Groups {
		fmt.Fprintf(bw, "%d ", d.Groups[j].Len)
		writeFloats(bw, d.Group(j))
	}

	fmt.Fprintf(bw, "c grid\n%d ", len(d.Grid))
	writeFloats(bw, d.Grid)

	return errors.Wrap(bw.Flush(), "Could not write data")
}

// WriteDataFile writes d to the named file
func WriteDataFile(filename string, d *Data) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not create %s", filename)
	}
	defer f.Close()

	return WriteData(f, d)
}

func writeFloats(w io.Writer, vals []float64) {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	fmt.Fprintf(w, "%s\n", strings.Join(strs, " "))
}
