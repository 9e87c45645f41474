// Package cfb implements the Compound File Binary container spec.md
// §4.10/§6 prescribes for wrapping an Agile-encrypted package: a v3 CFB
// file (512-byte sectors, 64-byte mini sectors, 4096-byte mini-stream
// cutoff) holding exactly the fixed directory tree EncryptionInfo/
// EncryptedPackage need, plus the DataSpaces bookkeeping MS-OFFCRYPTO
// requires alongside them.
//
// richardlehane/mscfb (wired in CfbReader, reader.go) only reads CFB
// containers; it exposes no writer, so CfbWriter here is a from-scratch
// sector/FAT/directory builder grounded directly on spec.md §4.10's
// byte-level description — no pack example builds a CFB container either.
package cfb

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize          = 512
	miniSectorSize       = 64
	miniStreamCutoff     = 4096
	dirEntrySize         = 128
	dirEntriesPerSector  = sectorSize / dirEntrySize
	fatEntriesPerSector  = sectorSize / 4
	difatEntriesInHeader = 109
	difatEntriesPerSector = fatEntriesPerSector - 1 // last slot is the next-DIFAT-sector pointer
	headerSize           = 512

	freeSect    uint32 = 0xFFFFFFFF
	endOfChain  uint32 = 0xFFFFFFFE
	fatSectFlag uint32 = 0xFFFFFFFD
	difSectFlag uint32 = 0xFFFFFFFC
	noStream    uint32 = 0xFFFFFFFF

	objStorage byte = 1
	objStream  byte = 2
	objRoot    byte = 5
)

// Magic is the 8-byte CFB file signature, per spec.md §4.10/§6.
var Magic = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// IsCFB reports whether b begins with the CFB magic signature.
func IsCFB(b []byte) bool {
	if len(b) < 8 {
		return false
	}
	for i, m := range Magic {
		if b[i] != m {
			return false
		}
	}
	return true
}

// dirNode is one entry of the directory tree being assembled. children is
// the unsorted, as-authored child list; left/right/childRoot are resolved
// once assembleTree balances each storage's children into a sibling tree.
type dirNode struct {
	name     string
	objType  byte
	data     []byte
	children []*dirNode

	id                  int
	left, right         *dirNode
	childRoot           *dirNode
	startSector         uint32
	size                uint64
}

func newStorage(name string, children ...*dirNode) *dirNode {
	return &dirNode{name: name, objType: objStorage, children: children}
}

func newStream(name string, data []byte) *dirNode {
	return &dirNode{name: name, objType: objStream, data: data}
}

// WriteEncryptedContainer builds a whole v3 CFB file embedding
// encryptionInfo and encryptedPackage under exactly the directory tree
// spec.md §4.10 specifies.
func WriteEncryptedContainer(encryptionInfo, encryptedPackage []byte) ([]byte, error) {
	primary := newStream("\x06Primary", primaryStream())
	transform := newStorage("StrongEncryptionTransform", primary)
	transformInfo := newStorage("TransformInfo", transform)
	strongSpace := newStream("StrongEncryptionDataSpace", dataSpaceDefinitionStream())
	dataSpaceInfo := newStorage("DataSpaceInfo", strongSpace)
	version := newStream("Version", versionStream())
	dataSpaceMap := newStream("DataSpaceMap", dataSpaceMapStream())
	dataSpaces := newStorage("\x06DataSpaces", version, dataSpaceMap, dataSpaceInfo, transformInfo)

	encPkgNode := newStream("EncryptedPackage", padEncryptedPackage(encryptedPackage))
	encInfoNode := newStream("EncryptionInfo", encryptionInfo)

	root := newStorage("Root Entry", dataSpaces, encPkgNode, encInfoNode)
	root.objType = objRoot

	assembleTree(root)
	nodes := flatten(root)

	return renderContainer(nodes, root, encPkgNode)
}

// padEncryptedPackage zero-pads b to the greater of 4104 bytes and the
// next 512-byte sector boundary, per spec.md §4.10/§6.
func padEncryptedPackage(b []byte) []byte {
	target := ceilDiv(len(b), sectorSize) * sectorSize
	if target < 4104 {
		target = 4104
	}
	out := make([]byte, target)
	copy(out, b)
	return out
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// assembleTree balances each storage's children into a red-black sibling
// tree (built all-black, a valid degenerate case spec.md §4.10 explicitly
// permits) and recurses into every child.
func assembleTree(n *dirNode) {
	if len(n.children) == 0 {
		return
	}
	sorted := append([]*dirNode(nil), n.children...)
	sort.Slice(sorted, func(i, j int) bool { return lessEntryName(sorted[i].name, sorted[j].name) })
	n.childRoot = buildBalanced(sorted)
	for _, c := range n.children {
		assembleTree(c)
	}
}

func buildBalanced(sorted []*dirNode) *dirNode {
	if len(sorted) == 0 {
		return nil
	}
	mid := len(sorted) / 2
	root := sorted[mid]
	root.left = buildBalanced(sorted[:mid])
	root.right = buildBalanced(sorted[mid+1:])
	return root
}

// lessEntryName orders directory entries the way MS-CFB requires: by
// UTF-16 code-unit count first, then case-insensitive ordinal comparison.
func lessEntryName(a, b string) bool {
	la, lb := len(utf16.Encode([]rune(a))), len(utf16.Encode([]rune(b)))
	if la != lb {
		return la < lb
	}
	return strings.ToUpper(a) < strings.ToUpper(b)
}

// flatten assigns sequential ids via pre-order traversal of the child
// lists (not the balanced sibling pointers); Root Entry always gets id 0.
func flatten(root *dirNode) []*dirNode {
	var nodes []*dirNode
	var walk func(n *dirNode)
	walk = func(n *dirNode) {
		n.id = len(nodes)
		nodes = append(nodes, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

// buildMiniStream concatenates every non-EncryptedPackage stream's data
// into one mini-stream buffer (each entry padded up to a 64-byte mini
// sector boundary) and returns the parallel miniFAT chain plus each
// entry's starting mini-sector index.
func buildMiniStream(nodes []*dirNode) ([]byte, []uint32, map[int]uint32) {
	var data []byte
	var miniFAT []uint32
	starts := make(map[int]uint32)
	for _, n := range nodes {
		nSectors := ceilDiv(len(n.data), miniSectorSize)
		starts[n.id] = uint32(len(miniFAT))
		for i := 0; i < nSectors; i++ {
			if i == nSectors-1 {
				miniFAT = append(miniFAT, endOfChain)
			} else {
				miniFAT = append(miniFAT, uint32(len(miniFAT))+1)
			}
		}
		data = append(data, n.data...)
		if pad := nSectors*miniSectorSize - len(n.data); pad > 0 {
			data = append(data, make([]byte, pad)...)
		}
	}
	return data, miniFAT, starts
}

func renderContainer(nodes []*dirNode, root, encPkgNode *dirNode) ([]byte, error) {
	var miniNodes []*dirNode
	for _, n := range nodes {
		if n.objType == objStream && n != encPkgNode {
			miniNodes = append(miniNodes, n)
		}
	}
	miniStreamData, miniFAT, miniStarts := buildMiniStream(miniNodes)

	dirSectorCount := ceilDiv(len(nodes), dirEntriesPerSector)
	miniFATSectorCount := ceilDiv(len(miniFAT)*4, sectorSize)
	miniStreamSectorCount := ceilDiv(len(miniStreamData), sectorSize)
	encPkgSectorCount := ceilDiv(len(encPkgNode.data), sectorSize)

	fatSectorCount := 1
	difatSectorCount := 0
	for {
		nonFAT := dirSectorCount + miniFATSectorCount + miniStreamSectorCount + encPkgSectorCount
		total := nonFAT + fatSectorCount + difatSectorCount
		needed := ceilDiv(total, fatEntriesPerSector)
		neededDifat := 0
		if needed > difatEntriesInHeader {
			neededDifat = ceilDiv(needed-difatEntriesInHeader, difatEntriesPerSector)
		}
		if needed == fatSectorCount && neededDifat == difatSectorCount {
			break
		}
		fatSectorCount = needed
		difatSectorCount = neededDifat
	}

	dirStart := 0
	miniFATStart := dirStart + dirSectorCount
	miniStreamStart := miniFATStart + miniFATSectorCount
	encPkgStart := miniStreamStart + miniStreamSectorCount
	difatStart := encPkgStart + encPkgSectorCount
	fatStart := difatStart + difatSectorCount
	totalSectors := fatStart + fatSectorCount

	fat := make([]uint32, totalSectors)
	for i := range fat {
		fat[i] = freeSect
	}
	chain := func(start, count int) {
		for i := 0; i < count; i++ {
			if i == count-1 {
				fat[start+i] = endOfChain
			} else {
				fat[start+i] = uint32(start + i + 1)
			}
		}
	}
	chain(dirStart, dirSectorCount)
	chain(miniFATStart, miniFATSectorCount)
	chain(miniStreamStart, miniStreamSectorCount)
	chain(encPkgStart, encPkgSectorCount)
	for i := 0; i < difatSectorCount; i++ {
		fat[difatStart+i] = difSectFlag
	}
	for i := 0; i < fatSectorCount; i++ {
		fat[fatStart+i] = fatSectFlag
	}

	if miniStreamSectorCount > 0 {
		root.startSector = uint32(miniStreamStart)
	} else {
		root.startSector = endOfChain
	}
	root.size = uint64(len(miniStreamData))

	if encPkgSectorCount > 0 {
		encPkgNode.startSector = uint32(encPkgStart)
	} else {
		encPkgNode.startSector = endOfChain
	}
	encPkgNode.size = uint64(len(encPkgNode.data))

	for _, n := range nodes {
		if n.objType == objStorage {
			n.startSector = 0
			n.size = 0
		}
	}

	dirBytes := make([]byte, dirSectorCount*sectorSize)
	for _, n := range nodes {
		off := n.id * dirEntrySize
		writeDirEntry(dirBytes[off:off+dirEntrySize], n, miniStarts)
	}
	for i := len(nodes); i < dirSectorCount*dirEntriesPerSector; i++ {
		off := i * dirEntrySize
		binary.LittleEndian.PutUint32(dirBytes[off+68:off+72], noStream)
		binary.LittleEndian.PutUint32(dirBytes[off+72:off+76], noStream)
		binary.LittleEndian.PutUint32(dirBytes[off+76:off+80], noStream)
	}

	miniFATBytes := make([]byte, miniFATSectorCount*sectorSize)
	for i, v := range miniFAT {
		binary.LittleEndian.PutUint32(miniFATBytes[i*4:i*4+4], v)
	}
	for i := len(miniFAT); i < miniFATSectorCount*fatEntriesPerSector; i++ {
		binary.LittleEndian.PutUint32(miniFATBytes[i*4:i*4+4], freeSect)
	}

	miniStreamBytes := make([]byte, miniStreamSectorCount*sectorSize)
	copy(miniStreamBytes, miniStreamData)

	encPkgBytes := make([]byte, encPkgSectorCount*sectorSize)
	copy(encPkgBytes, encPkgNode.data)

	difatBytes := make([]byte, difatSectorCount*sectorSize)
	for i := 0; i < difatSectorCount; i++ {
		base := i * sectorSize
		for j := 0; j < difatEntriesPerSector; j++ {
			fatIdx := difatEntriesInHeader + i*difatEntriesPerSector + j
			v := freeSect
			if fatIdx < fatSectorCount {
				v = uint32(fatStart + fatIdx)
			}
			binary.LittleEndian.PutUint32(difatBytes[base+j*4:base+j*4+4], v)
		}
		next := endOfChain
		if i < difatSectorCount-1 {
			next = uint32(difatStart + i + 1)
		}
		binary.LittleEndian.PutUint32(difatBytes[base+difatEntriesPerSector*4:base+(difatEntriesPerSector+1)*4], next)
	}

	fatBytes := make([]byte, fatSectorCount*sectorSize)
	for i, v := range fat {
		binary.LittleEndian.PutUint32(fatBytes[i*4:i*4+4], v)
	}
	for i := len(fat); i < fatSectorCount*fatEntriesPerSector; i++ {
		binary.LittleEndian.PutUint32(fatBytes[i*4:i*4+4], freeSect)
	}

	header := make([]byte, headerSize)
	copy(header[0:8], Magic[:])
	binary.LittleEndian.PutUint16(header[24:26], 0x003E)
	binary.LittleEndian.PutUint16(header[26:28], 0x0003)
	binary.LittleEndian.PutUint16(header[28:30], 0xFFFE)
	binary.LittleEndian.PutUint16(header[30:32], 9) // 1<<9 = 512
	binary.LittleEndian.PutUint16(header[32:34], 6) // 1<<6 = 64
	binary.LittleEndian.PutUint32(header[40:44], 0) // dir sector count: 0 for v3
	binary.LittleEndian.PutUint32(header[44:48], uint32(fatSectorCount))
	binary.LittleEndian.PutUint32(header[48:52], uint32(dirStart))
	binary.LittleEndian.PutUint32(header[52:56], 0)
	binary.LittleEndian.PutUint32(header[56:60], miniStreamCutoff)
	if miniFATSectorCount > 0 {
		binary.LittleEndian.PutUint32(header[60:64], uint32(miniFATStart))
	} else {
		binary.LittleEndian.PutUint32(header[60:64], endOfChain)
	}
	binary.LittleEndian.PutUint32(header[64:68], uint32(miniFATSectorCount))
	if difatSectorCount > 0 {
		binary.LittleEndian.PutUint32(header[68:72], uint32(difatStart))
	} else {
		binary.LittleEndian.PutUint32(header[68:72], endOfChain)
	}
	binary.LittleEndian.PutUint32(header[72:76], uint32(difatSectorCount))
	for i := 0; i < difatEntriesInHeader; i++ {
		base := 76 + i*4
		v := freeSect
		if i < fatSectorCount {
			v = uint32(fatStart + i)
		}
		binary.LittleEndian.PutUint32(header[base:base+4], v)
	}

	out := make([]byte, 0, headerSize+len(dirBytes)+len(miniFATBytes)+len(miniStreamBytes)+len(encPkgBytes)+len(difatBytes)+len(fatBytes))
	out = append(out, header...)
	out = append(out, dirBytes...)
	out = append(out, miniFATBytes...)
	out = append(out, miniStreamBytes...)
	out = append(out, encPkgBytes...)
	out = append(out, difatBytes...)
	out = append(out, fatBytes...)
	return out, nil
}

func writeDirEntry(buf []byte, n *dirNode, miniStarts map[int]uint32) {
	units := utf16.Encode([]rune(n.name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:2*i+2], u)
	}
	binary.LittleEndian.PutUint16(buf[64:66], uint16(2*(len(units)+1)))
	buf[66] = n.objType
	buf[67] = 1 // color flag: black

	putID := func(off int, target *dirNode) {
		v := noStream
		if target != nil {
			v = uint32(target.id)
		}
		binary.LittleEndian.PutUint32(buf[off:off+4], v)
	}
	putID(68, n.left)
	putID(72, n.right)
	putID(76, n.childRoot)

	startSector, size := n.startSector, n.size
	if mini, ok := miniStarts[n.id]; ok {
		startSector, size = mini, uint64(len(n.data))
	}
	binary.LittleEndian.PutUint32(buf[116:120], startSector)
	binary.LittleEndian.PutUint64(buf[120:128], size)
}
