package landmarks

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// HolisticProvider implements Provider using a Python MediaPipe Holistic
// subprocess. Frames are sent as length-prefixed JPEG and the service
// answers with one JSON line per frame.
type HolisticProvider struct {
	config    Config
	order     *Order
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewHolisticProvider creates a new holistic landmark provider producing
// sets in the given order. The Python process is started lazily on first
// detection.
func NewHolisticProvider(config Config, order *Order) (*HolisticProvider, error) {
	if findHolisticScript(config.ScriptPath) == "" {
		return nil, fmt.Errorf("holistic_service.py not found")
	}
	return &HolisticProvider{config: config, order: order}, nil
}

// Detect sends the image to the holistic service and assembles a Set from
// the returned pose and hand landmarks.
func (p *HolisticProvider) Detect(img *gocv.Mat) (*Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := p.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := p.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := p.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Pose      []Point3D `json:"pose"`
		LeftHand  []Point3D `json:"left_hand"`
		RightHand []Point3D `json:"right_hand"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	p.resetIdleTimer()

	return assembleSet(p.order, response.Pose, response.LeftHand, response.RightHand)
}

// assembleSet maps the raw holistic output onto the keypoint order.
// A missing or truncated region yields a DetectionError for that region.
func assembleSet(order *Order, pose, left, right []Point3D) (*Set, error) {
	if len(pose) <= PoseRightElbow {
		return nil, &DetectionError{Region: RegionPose}
	}
	if len(left) < NumHandLandmarks {
		return nil, &DetectionError{Region: RegionLeftHand}
	}
	if len(right) < NumHandLandmarks {
		return nil, &DetectionError{Region: RegionRightHand}
	}

	points := make([]Point3D, order.Len())
	for i, name := range order.Names {
		switch {
		case name == "left_shoulder":
			points[i] = pose[PoseLeftShoulder]
		case name == "right_shoulder":
			points[i] = pose[PoseRightShoulder]
		case name == "left_elbow":
			points[i] = pose[PoseLeftElbow]
		case name == "right_elbow":
			points[i] = pose[PoseRightElbow]
		default:
			joint, hand, ok := splitHandName(name)
			if !ok {
				return nil, fmt.Errorf("landmarks: unknown keypoint %q in order %q", name, order.Version)
			}
			if hand == "left" {
				points[i] = left[joint]
			} else {
				points[i] = right[joint]
			}
		}
	}

	return NewSet(order, points)
}

// splitHandName resolves names of the form left_hand_<joint> or
// right_hand_<joint> to a hand side and MediaPipe joint index.
func splitHandName(name string) (joint int, hand string, ok bool) {
	var rest string
	switch {
	case len(name) > 10 && name[:10] == "left_hand_":
		hand, rest = "left", name[10:]
	case len(name) > 11 && name[:11] == "right_hand_":
		hand, rest = "right", name[11:]
	default:
		return 0, "", false
	}
	for i, j := range handJointNames {
		if j == rest {
			return i, hand, true
		}
	}
	return 0, "", false
}

// Close shuts down the Python process.
func (p *HolisticProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *HolisticProvider) ensureStarted() error {
	if p.started {
		return nil
	}

	scriptPath := findHolisticScript(p.config.ScriptPath)
	if scriptPath == "" {
		return fmt.Errorf("holistic_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	p.cmd = exec.Command(pythonPath, scriptPath,
		fmt.Sprintf("--min-detection-confidence=%g", p.config.MinConfidence),
		fmt.Sprintf("--min-tracking-confidence=%g", p.config.MinTrackingConf),
	)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start holistic service: %w", err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true

	return nil
}

func (p *HolisticProvider) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

func (p *HolisticProvider) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(30*time.Second, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.shutdown()
	})
}

func findHolisticScript(pinned string) string {
	if pinned != "" {
		if _, err := os.Stat(pinned); err == nil {
			return pinned
		}
		return ""
	}

	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/holistic_service.py",
		"../scripts/holistic_service.py",
		filepath.Join(execDir, "scripts/holistic_service.py"),
		filepath.Join(os.Getenv("HOME"), ".pjmsign/scripts/holistic_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".pjmsign/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
