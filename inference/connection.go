package inference

import (
	"github.com/portstow/az/env"
)

// Connection is one actor's endpoint onto a Server. It implements
// mcts.Oracle so an episode.Player can use it as a drop-in Oracle.
type Connection struct {
	server *Server
}

// NewConnection returns a Connection bound to server. Many Connections
// may share one Server.
func NewConnection(server *Server) *Connection {
	return &Connection{server: server}
}

// Predict implements mcts.Oracle. The engine only ever calls it with a
// single-element batch; batching across actors happens inside Server.
func (c *Connection) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	if len(batch) != 1 {
		policies := make([][]float32, len(batch))
		values := make([]float32, len(batch))
		for i, obs := range batch {
			p, v, err := c.predictOne(obs)
			if err != nil {
				return nil, nil, err
			}
			policies[i], values[i] = p, v
		}
		return policies, values, nil
	}
	p, v, err := c.predictOne(batch[0])
	if err != nil {
		return nil, nil, err
	}
	return [][]float32{p}, []float32{v}, nil
}

func (c *Connection) predictOne(obs env.Observation) ([]float32, float32, error) {
	req := request{obs: obs, reply: make(chan response, 1)}
	select {
	case c.server.requests <- req:
	case <-c.server.done:
		return nil, 0, ErrClosed
	}
	resp := <-req.reply
	return resp.policy, resp.value, resp.err
}
