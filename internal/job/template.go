package job

import "fmt"

// Template holds one mining.notify job exactly as the pool framed it. All
// hash and blob fields stay hex encoded until something needs the bytes.
type Template struct {
	JobID          string
	PrevHash       string
	Coinbase1      string
	Coinbase2      string
	MerkleBranches []string
	Version        string
	Bits           string
	NTime          string
	CleanJobs      bool
}

// FromNotifyParams maps the positional mining.notify parameter list onto a
// Template. Pools send nine entries, but a few omit clean_jobs; it then
// defaults to false.
func FromNotifyParams(params []interface{}) (*Template, error) {
	if len(params) < 8 {
		return nil, fmt.Errorf("notify params: got %d fields, want at least 8", len(params))
	}
	str := func(i int, name string) (string, error) {
		s, ok := params[i].(string)
		if !ok {
			return "", fmt.Errorf("notify params: %s is %T, want string", name, params[i])
		}
		return s, nil
	}
	t := &Template{}
	var err error
	if t.JobID, err = str(0, "job_id"); err != nil {
		return nil, err
	}
	if t.PrevHash, err = str(1, "prev_hash"); err != nil {
		return nil, err
	}
	if t.Coinbase1, err = str(2, "coinb1"); err != nil {
		return nil, err
	}
	if t.Coinbase2, err = str(3, "coinb2"); err != nil {
		return nil, err
	}
	branches, ok := params[4].([]interface{})
	if !ok {
		return nil, fmt.Errorf("notify params: merkle_branch is %T, want array", params[4])
	}
	for i, b := range branches {
		s, ok := b.(string)
		if !ok {
			return nil, fmt.Errorf("notify params: merkle_branch[%d] is %T, want string", i, b)
		}
		t.MerkleBranches = append(t.MerkleBranches, s)
	}
	if t.Version, err = str(5, "version"); err != nil {
		return nil, err
	}
	if t.Bits, err = str(6, "nbits"); err != nil {
		return nil, err
	}
	if t.NTime, err = str(7, "ntime"); err != nil {
		return nil, err
	}
	if len(params) > 8 {
		clean, ok := params[8].(bool)
		if !ok {
			return nil, fmt.Errorf("notify params: clean_jobs is %T, want bool", params[8])
		}
		t.CleanJobs = clean
	}
	return t, nil
}
