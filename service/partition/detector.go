// Package partition decides which share of the configured courses an
// application instance is responsible for.
package partition

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

var (
	// Overridden in tests.
	getHostname = os.Hostname
	lookupSRV   = net.LookupSRV

	// ErrNoPartitionDataAvailableYet is returned by the SRV detector while
	// the SRV records of the service are not published yet, which happens
	// for a short time after a stateful set is deployed.
	ErrNoPartitionDataAvailableYet = errors.New("no partition data available yet")
)

// Detector reports the partition of the running instance and the total
// number of partitions.
type Detector interface {
	PartitionInfo() (int, int, error)
}

// Fixed is a Detector with a static answer. The zero value is a single
// instance owning everything.
type Fixed struct {
	Partition       int
	NumOfPartitions int
}

// PartitionInfo implements Detector.
func (d Fixed) PartitionInfo() (int, int, error) {
	if d.NumOfPartitions <= 0 {
		return 0, 1, nil
	}

	return d.Partition, d.NumOfPartitions, nil
}

// SRVRecord counts partitions by resolving the SRV records of a headless
// service and takes the instance's partition from its host name suffix
// (name-<n>), as assigned to stateful set pods.
type SRVRecord struct {
	srvName string
}

// DetectFromSRVRecords returns an SRVRecord detector for srvName.
func DetectFromSRVRecords(srvName string) SRVRecord {
	return SRVRecord{srvName: srvName}
}

// PartitionInfo implements Detector.
func (det SRVRecord) PartitionInfo() (int, int, error) {
	hostname, err := getHostname()
	if err != nil {
		return -1, -1, fmt.Errorf("partition detector: unable to detect host name: %w", err)
	}

	tokens := strings.Split(hostname, "-")
	partition, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 32)
	if err != nil {
		return -1, -1, errors.New("partition detector: unable to extract partition number from the host name suffix")
	}

	_, addrs, err := lookupSRV("", "", det.srvName)
	if err != nil {
		return -1, -1, ErrNoPartitionDataAvailableYet
	}

	return int(partition), len(addrs), nil
}

// Assign returns the courses owned by partition curr out of n. Courses are
// dealt round-robin in the order given, so every instance must be handed
// the same list.
func Assign(courses []string, curr, n int) ([]string, error) {
	if n <= 0 || curr < 0 || curr >= n {
		return nil, fmt.Errorf("partition %d out of range [0, %d)", curr, n)
	}

	var owned []string
	for i, course := range courses {
		if i%n == curr {
			owned = append(owned, course)
		}
	}

	return owned, nil
}
