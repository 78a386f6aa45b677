package halo

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gogpu/stencil/internal/reduce"
)

func TestAllreduce(t *testing.T) {
	for units := 1; units <= 6; units++ {
		results := make([]reduce.Histogram, units)
		_, err := runUnits(units, func(ctx context.Context, ep *Endpoint) error {
			var h reduce.Histogram
			h[ep.Rank()] = ep.Rank() + 1
			h[255] = 1
			if err := ep.Allreduce(ctx, &h); err != nil {
				return err
			}
			results[ep.Rank()] = h
			return nil
		})
		if err != nil {
			t.Fatalf("P=%d: Allreduce() error = %v", units, err)
		}
		for r, h := range results {
			if h[255] != units {
				t.Errorf("P=%d rank %d: h[255] = %d, want %d", units, r, h[255], units)
			}
			for k := range units {
				if h[k] != k+1 {
					t.Errorf("P=%d rank %d: h[%d] = %d, want %d", units, r, k, h[k], k+1)
				}
			}
		}
	}
}

func TestScatterGather(t *testing.T) {
	const units = 4
	parts := [][]byte{{1}, {2, 2}, nil, {4, 4, 4, 4}}
	var gathered [][]byte

	_, err := runUnits(units, func(ctx context.Context, ep *Endpoint) error {
		var in [][]byte
		if ep.Rank() == 0 {
			in = parts
		}
		mine, err := ep.Scatter(ctx, in)
		if err != nil {
			return err
		}
		if !bytes.Equal(mine, parts[ep.Rank()]) {
			return errors.New("scatter delivered wrong part")
		}
		for i := range mine {
			mine[i] *= 10
		}
		all, err := ep.Gather(ctx, mine)
		if ep.Rank() == 0 {
			gathered = all
		} else if all != nil {
			return errors.New("non-root received gather result")
		}
		return err
	})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	want := [][]byte{{10}, {20, 20}, nil, {40, 40, 40, 40}}
	for r := range want {
		if !bytes.Equal(gathered[r], want[r]) {
			t.Errorf("gathered[%d] = %v, want %v", r, gathered[r], want[r])
		}
	}
	if parts[1][0] != 2 {
		t.Error("scatter aliased the root's input")
	}
}

func TestBarrierAndBcast(t *testing.T) {
	const units = 5
	got := make([]any, units)
	_, err := runUnits(units, func(ctx context.Context, ep *Endpoint) error {
		if err := ep.Barrier(ctx); err != nil {
			return err
		}
		v, err := ep.Bcast(ctx, "meta")
		got[ep.Rank()] = v
		return err
	})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	for r, v := range got {
		if v != "meta" {
			t.Errorf("rank %d got %v, want meta", r, v)
		}
	}
}

func TestRecv_TagMismatch(t *testing.T) {
	errs, _ := runUnits(2, func(ctx context.Context, ep *Endpoint) error {
		if ep.Rank() == 0 {
			return ep.Send(ctx, 1, tagBcast, nil)
		}
		_, err := ep.Recv(ctx, 0, tagReduce)
		return err
	})
	if !errors.Is(errs[1], ErrMismatch) {
		t.Errorf("Recv() error = %v, want ErrMismatch", errs[1])
	}
}

func TestSend_InvalidRank(t *testing.T) {
	ep := NewComm(2).Endpoint(0)
	for _, to := range []int{0, 2, -3} {
		if err := ep.Send(context.Background(), to, tagBcast, nil); !errors.Is(err, ErrRank) {
			t.Errorf("Send(to=%d) error = %v, want ErrRank", to, err)
		}
	}
}

func TestSend_Cancelled(t *testing.T) {
	ep := NewComm(2).Endpoint(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ep.Send(ctx, 1, tagBcast, nil); !errors.Is(err, ErrAborted) {
		t.Errorf("Send() error = %v, want ErrAborted", err)
	}
}

func TestCancelled_PeerReady(t *testing.T) {
	// A waiting peer must not let a cancelled call complete.
	dead, cancel := context.WithCancel(context.Background())
	cancel()

	calls := map[string]func(ep *Endpoint) error{
		"Send": func(ep *Endpoint) error { return ep.Send(dead, 1, tagBcast, nil) },
		"Recv": func(ep *Endpoint) error {
			_, err := ep.Recv(dead, 1, tagBcast)
			return err
		},
		"Sendrecv": func(ep *Endpoint) error {
			_, err := ep.Sendrecv(dead, 1, nil, 1, tagBcast)
			return err
		},
	}
	for name, call := range calls {
		for range 50 {
			c := NewComm(2)
			peerCtx, stop := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				peer := c.Endpoint(1)
				go func() { _, _ = peer.Recv(peerCtx, 0, tagBcast) }()
				_ = peer.Send(peerCtx, 0, tagBcast, nil)
			}()

			err := call(c.Endpoint(0))
			stop()
			<-done
			if !errors.Is(err, ErrAborted) || !errors.Is(err, context.Canceled) {
				t.Fatalf("%s() error = %v, want ErrAborted wrapping context.Canceled", name, err)
			}
		}
	}
}
